package services

import (
	"context"

	"github.com/softdesk/softdesk-api/internal/authz"
	"github.com/softdesk/softdesk-api/internal/models"
	"github.com/softdesk/softdesk-api/pkg/response"
	"gorm.io/gorm"
)

type IssueService struct {
	db   *gorm.DB
	gate *authz.Gate
}

func NewIssueService(db *gorm.DB, gate *authz.Gate) *IssueService {
	return &IssueService{db: db, gate: gate}
}

// IssueInput carries the writable issue fields. Author is never read from
// input; Project, when sent, must repeat the project of the URL. An
// AssigneeID of 0 clears the assignee.
type IssueInput struct {
	Title       *string `json:"title" binding:"omitempty,max=100"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	Tag         *string `json:"tag"`
	Project     *uint   `json:"project"`
	AssigneeID  *uint   `json:"assignee_id"`
}

func (s *IssueService) validate(ctx context.Context, in *IssueInput, projectID uint, partial bool) error {
	errs := fieldErrors{}
	errs.requireString("title", in.Title, partial)
	if in.Status != nil && !models.IssueStatus(*in.Status).Valid() {
		errs.add("status", invalidChoice(*in.Status))
	}
	if in.Priority != nil && !models.IssuePriority(*in.Priority).Valid() {
		errs.add("priority", invalidChoice(*in.Priority))
	}
	if in.Tag == nil {
		if !partial {
			errs.add("tag", msgRequired)
		}
	} else if !models.IssueTag(*in.Tag).Valid() {
		errs.add("tag", invalidChoice(*in.Tag))
	}
	if in.Project != nil && *in.Project != projectID {
		errs.add("project", msgMismatch)
	}
	if in.AssigneeID != nil && *in.AssigneeID != 0 {
		ok, err := s.gate.Roles().IsContributor(ctx, *in.AssigneeID, projectID)
		if err != nil {
			return err
		}
		if !ok {
			errs.add("assignee_id", "the assignee must be a contributor of the project")
		}
	}
	return errs.err()
}

func (in *IssueInput) apply(i *models.Issue) {
	if in.Title != nil {
		i.Title = *in.Title
	}
	if in.Description != nil {
		i.Description = *in.Description
	}
	if in.Status != nil {
		i.Status = models.IssueStatus(*in.Status)
	}
	if in.Priority != nil {
		i.Priority = models.IssuePriority(*in.Priority)
	}
	if in.Tag != nil {
		i.Tag = models.IssueTag(*in.Tag)
	}
	if in.AssigneeID != nil {
		i.AssigneeID = in.AssigneeID
		if *in.AssigneeID == 0 {
			i.AssigneeID = nil
		}
		i.Assignee = nil
	}
}

func (s *IssueService) List(ctx context.Context, userID, projectID uint, page response.PageRequest) (*response.Page, error) {
	if _, err := findProject(ctx, s.db, projectID); err != nil {
		return nil, err
	}
	if err := s.gate.RequireCollection(ctx, userID, authz.KindIssue, authz.ActionList, projectID); err != nil {
		return nil, err
	}
	rows := make([]models.Issue, 0)
	query := s.db.WithContext(ctx).Model(&models.Issue{}).
		Scopes(authz.VisibleIssues(userID, projectID)).
		Preload("Author").
		Preload("Assignee")
	return paginate(query, page, &rows)
}

// Create files an issue in projectID authored by userID.
func (s *IssueService) Create(ctx context.Context, userID, projectID uint, in *IssueInput) (*models.Issue, error) {
	if _, err := findProject(ctx, s.db, projectID); err != nil {
		return nil, err
	}
	if err := s.gate.RequireCollection(ctx, userID, authz.KindIssue, authz.ActionCreate, projectID); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, in, projectID, false); err != nil {
		return nil, err
	}

	issue := models.Issue{
		Status:    models.IssueStatusTodo,
		Priority:  models.IssuePriorityLow,
		ProjectID: projectID,
		AuthorID:  userID,
	}
	in.apply(&issue)
	if err := s.db.WithContext(ctx).Create(&issue).Error; err != nil {
		return nil, err
	}
	return findIssue(ctx, s.db, projectID, issue.ID)
}

func (s *IssueService) Get(ctx context.Context, userID, projectID, issueID uint) (*models.Issue, error) {
	if _, err := findProject(ctx, s.db, projectID); err != nil {
		return nil, err
	}
	issue, err := findIssue(ctx, s.db, projectID, issueID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireObject(ctx, userID, authz.KindIssue, authz.ActionRetrieve, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

func (s *IssueService) Update(ctx context.Context, userID, projectID, issueID uint, in *IssueInput, partial bool) (*models.Issue, error) {
	if _, err := findProject(ctx, s.db, projectID); err != nil {
		return nil, err
	}
	issue, err := findIssue(ctx, s.db, projectID, issueID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireObject(ctx, userID, authz.KindIssue, authz.ActionUpdate, issue); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, in, projectID, partial); err != nil {
		return nil, err
	}

	in.apply(issue)
	if err := s.db.WithContext(ctx).Model(issue).
		Select("title", "description", "status", "priority", "tag", "assignee_id").
		Updates(issue).Error; err != nil {
		return nil, err
	}
	return findIssue(ctx, s.db, projectID, issue.ID)
}

// Delete removes the issue and its comments.
func (s *IssueService) Delete(ctx context.Context, userID, projectID, issueID uint) error {
	if _, err := findProject(ctx, s.db, projectID); err != nil {
		return err
	}
	issue, err := findIssue(ctx, s.db, projectID, issueID)
	if err != nil {
		return err
	}
	if err := s.gate.RequireObject(ctx, userID, authz.KindIssue, authz.ActionDelete, issue); err != nil {
		return err
	}
	return models.DeleteIssueCascade(ctx, s.db, issue.ID)
}
