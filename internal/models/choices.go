package models

type ProjectType string

const (
	ProjectTypeBackend  ProjectType = "BACKEND"
	ProjectTypeFrontend ProjectType = "FRONTEND"
	ProjectTypeIOS      ProjectType = "IOS"
	ProjectTypeAndroid  ProjectType = "ANDROID"
)

// ProjectTypes lists every accepted project type in display order.
var ProjectTypes = []ProjectType{ProjectTypeBackend, ProjectTypeFrontend, ProjectTypeIOS, ProjectTypeAndroid}

func (t ProjectType) Valid() bool { return contains(ProjectTypes, t) }

type IssueStatus string

const (
	IssueStatusTodo       IssueStatus = "TODO"
	IssueStatusInProgress IssueStatus = "INPROGRESS"
	IssueStatusFinished   IssueStatus = "FINISHED"
)

var IssueStatuses = []IssueStatus{IssueStatusTodo, IssueStatusInProgress, IssueStatusFinished}

func (s IssueStatus) Valid() bool { return contains(IssueStatuses, s) }

type IssuePriority string

const (
	IssuePriorityLow    IssuePriority = "LOW"
	IssuePriorityMedium IssuePriority = "MEDIUM"
	IssuePriorityHigh   IssuePriority = "HIGH"
)

var IssuePriorities = []IssuePriority{IssuePriorityLow, IssuePriorityMedium, IssuePriorityHigh}

func (p IssuePriority) Valid() bool { return contains(IssuePriorities, p) }

type IssueTag string

const (
	IssueTagBug     IssueTag = "BUG"
	IssueTagFeature IssueTag = "FEATURE"
	IssueTagTask    IssueTag = "TASK"
)

var IssueTags = []IssueTag{IssueTagBug, IssueTagFeature, IssueTagTask}

func (t IssueTag) Valid() bool { return contains(IssueTags, t) }

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
