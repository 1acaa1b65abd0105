package authz

import (
	"context"

	"github.com/softdesk/softdesk-api/pkg/logger"
	"github.com/softdesk/softdesk-api/pkg/response"
)

type rule int

const (
	ruleAnyone rule = iota
	ruleAuthenticated
	ruleProjectAuthor
	ruleContributor
	ruleResourceAuthor
)

// Collection-level rules apply before any row is loaded. For nested kinds the
// project id handed to the check is the one named in the path.
var collectionRules = map[Kind]map[Action]rule{
	KindUser: {
		ActionList:   ruleAnyone,
		ActionCreate: ruleAnyone,
	},
	KindProject: {
		ActionList:   ruleAuthenticated,
		ActionCreate: ruleAuthenticated,
	},
	KindContributor: {
		ActionList:   ruleAuthenticated,
		ActionCreate: ruleProjectAuthor,
	},
	KindIssue: {
		ActionList:   ruleAuthenticated,
		ActionCreate: ruleContributor,
	},
	KindComment: {
		ActionList:   ruleAuthenticated,
		ActionCreate: ruleContributor,
	},
}

// Object-level rules apply to a row that is known to exist.
var objectRules = map[Kind]map[Action]rule{
	KindUser: {
		ActionRetrieve: ruleAuthenticated,
		ActionUpdate:   ruleResourceAuthor,
		ActionDelete:   ruleResourceAuthor,
	},
	KindProject: {
		ActionRetrieve: ruleContributor,
		ActionUpdate:   ruleProjectAuthor,
		ActionDelete:   ruleProjectAuthor,
	},
	KindContributor: {
		ActionRetrieve: ruleContributor,
		ActionUpdate:   ruleProjectAuthor,
		ActionDelete:   ruleProjectAuthor,
	},
	KindIssue: {
		ActionRetrieve: ruleContributor,
		ActionUpdate:   ruleResourceAuthor,
		ActionDelete:   ruleResourceAuthor,
	},
	KindComment: {
		ActionRetrieve: ruleContributor,
		ActionUpdate:   ruleResourceAuthor,
		ActionDelete:   ruleResourceAuthor,
	},
}

// Gate combines the role resolver with the per-kind policy tables.
type Gate struct {
	roles   RoleResolver
	metrics *Metrics
}

// NewGate builds a gate. metrics may be nil.
func NewGate(roles RoleResolver, metrics *Metrics) *Gate {
	return &Gate{roles: roles, metrics: metrics}
}

// Roles exposes the resolver the gate decides with.
func (g *Gate) Roles() RoleResolver {
	return g.roles
}

// CheckCollection decides a list or create request. projectID is the
// enclosing project for nested kinds and zero otherwise.
func (g *Gate) CheckCollection(ctx context.Context, userID uint, kind Kind, action Action, projectID uint) (Decision, error) {
	r, ok := collectionRules[kind][action]
	if !ok {
		return g.record(userID, kind, action, deny(ReasonNoPolicy)), nil
	}
	d, err := g.evaluate(ctx, r, userID, projectID, 0)
	if err != nil {
		return Decision{}, err
	}
	return g.record(userID, kind, action, d), nil
}

// CheckObject decides a retrieve, update or delete on a loaded row.
func (g *Gate) CheckObject(ctx context.Context, userID uint, kind Kind, action Action, res Resource) (Decision, error) {
	r, ok := objectRules[kind][action]
	if !ok {
		return g.record(userID, kind, action, deny(ReasonNoPolicy)), nil
	}
	d, err := g.evaluate(ctx, r, userID, res.OwningProjectID(), res.AuthorUserID())
	if err != nil {
		return Decision{}, err
	}
	return g.record(userID, kind, action, d), nil
}

// RequireCollection is CheckCollection folded into a single error.
func (g *Gate) RequireCollection(ctx context.Context, userID uint, kind Kind, action Action, projectID uint) error {
	d, err := g.CheckCollection(ctx, userID, kind, action, projectID)
	if err != nil {
		return err
	}
	return d.Err()
}

// RequireObject is CheckObject folded into a single error.
func (g *Gate) RequireObject(ctx context.Context, userID uint, kind Kind, action Action, res Resource) error {
	d, err := g.CheckObject(ctx, userID, kind, action, res)
	if err != nil {
		return err
	}
	return d.Err()
}

func (g *Gate) evaluate(ctx context.Context, r rule, userID, projectID, authorID uint) (Decision, error) {
	if r == ruleAnyone {
		return allow(ReasonPublic), nil
	}
	if userID == 0 {
		return deny(ReasonUnauthenticated), nil
	}

	switch r {
	case ruleAuthenticated:
		return allow(ReasonAuthenticated), nil
	case ruleProjectAuthor:
		ok, err := g.roles.IsProjectAuthor(ctx, userID, projectID)
		if err != nil {
			return Decision{}, err
		}
		if ok {
			return allow(ReasonProjectAuthor), nil
		}
		return deny(ReasonNotProjectAuthor), nil
	case ruleContributor:
		ok, err := g.roles.IsContributor(ctx, userID, projectID)
		if err != nil {
			return Decision{}, err
		}
		if ok {
			return allow(ReasonContributor), nil
		}
		return deny(ReasonNotContributor), nil
	case ruleResourceAuthor:
		if authorID != 0 && authorID == userID {
			return allow(ReasonResourceAuthor), nil
		}
		return deny(ReasonNotResourceAuthor), nil
	}
	return deny(ReasonNoPolicy), nil
}

func (g *Gate) record(userID uint, kind Kind, action Action, d Decision) Decision {
	g.metrics.observe(kind, action, d)
	if !d.Allowed {
		logger.Debug().
			Uint("user_id", userID).
			Str("kind", string(kind)).
			Str("action", string(action)).
			Str("reason", string(d.Reason)).
			Msg("authorization denied")
	}
	return d
}

// Err maps a denial to the error reported to the client; nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonUnauthenticated:
		return response.NewUnauthorized("authentication credentials were not provided")
	case ReasonNotProjectAuthor:
		return response.NewForbidden("only the project author can perform this action")
	case ReasonNotContributor:
		return response.NewForbidden("you are not a contributor of this project")
	case ReasonNotResourceAuthor:
		return response.NewForbidden("only the author can perform this action")
	default:
		return response.NewForbidden("you do not have permission to perform this action")
	}
}
