// Package authz decides who may act on projects, contributors, issues,
// comments and user accounts, and which rows a listing exposes.
package authz

// Kind names a resource family the gate has a policy for.
type Kind string

const (
	KindUser        Kind = "user"
	KindProject     Kind = "project"
	KindContributor Kind = "contributor"
	KindIssue       Kind = "issue"
	KindComment     Kind = "comment"
)

// Action is the operation requested on a collection or a single row.
// Full and partial updates share ActionUpdate.
type Action string

const (
	ActionList     Action = "list"
	ActionCreate   Action = "create"
	ActionRetrieve Action = "retrieve"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
)

// Resource is anything the object-level check can reason about. Every
// resource resolves to the project it lives in and to the user allowed to
// modify it.
type Resource interface {
	OwningProjectID() uint
	AuthorUserID() uint
}

// Reason explains a decision; it is stable enough to use as a metric label.
type Reason string

const (
	ReasonPublic            Reason = "public"
	ReasonAuthenticated     Reason = "authenticated"
	ReasonProjectAuthor     Reason = "project_author"
	ReasonContributor       Reason = "contributor"
	ReasonResourceAuthor    Reason = "resource_author"
	ReasonUnauthenticated   Reason = "unauthenticated"
	ReasonNotProjectAuthor  Reason = "not_project_author"
	ReasonNotContributor    Reason = "not_contributor"
	ReasonNotResourceAuthor Reason = "not_resource_author"
	ReasonNoPolicy          Reason = "no_policy"
)

// Decision is the outcome of one check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow(r Reason) Decision { return Decision{Allowed: true, Reason: r} }
func deny(r Reason) Decision  { return Decision{Allowed: false, Reason: r} }
