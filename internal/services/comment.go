package services

import (
	"context"

	"github.com/softdesk/softdesk-api/internal/authz"
	"github.com/softdesk/softdesk-api/internal/models"
	"github.com/softdesk/softdesk-api/pkg/response"
	"gorm.io/gorm"
)

type CommentService struct {
	db   *gorm.DB
	gate *authz.Gate
}

func NewCommentService(db *gorm.DB, gate *authz.Gate) *CommentService {
	return &CommentService{db: db, gate: gate}
}

// CommentInput carries the comment text. The identifier and author are
// assigned by the server; Issue, when sent, must repeat the issue of the URL.
type CommentInput struct {
	Description *string `json:"description"`
	Issue       *uint   `json:"issue"`
}

func (in *CommentInput) validate(issueID uint, partial bool) error {
	errs := fieldErrors{}
	errs.requireString("description", in.Description, partial)
	if in.Issue != nil && *in.Issue != issueID {
		errs.add("issue", msgMismatch)
	}
	return errs.err()
}

// parents resolves the project and issue of the URL, in that order.
func (s *CommentService) parents(ctx context.Context, projectID, issueID uint) (*models.Issue, error) {
	if _, err := findProject(ctx, s.db, projectID); err != nil {
		return nil, err
	}
	return findIssue(ctx, s.db, projectID, issueID)
}

func (s *CommentService) List(ctx context.Context, userID, projectID, issueID uint, page response.PageRequest) (*response.Page, error) {
	if _, err := s.parents(ctx, projectID, issueID); err != nil {
		return nil, err
	}
	if err := s.gate.RequireCollection(ctx, userID, authz.KindComment, authz.ActionList, projectID); err != nil {
		return nil, err
	}
	rows := make([]models.Comment, 0)
	query := s.db.WithContext(ctx).Model(&models.Comment{}).
		Scopes(authz.VisibleComments(userID, issueID)).
		Preload("Author")
	return paginate(query, page, &rows)
}

// Create adds a comment by userID to the issue.
func (s *CommentService) Create(ctx context.Context, userID, projectID, issueID uint, in *CommentInput) (*models.Comment, error) {
	issue, err := s.parents(ctx, projectID, issueID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireCollection(ctx, userID, authz.KindComment, authz.ActionCreate, issue.ProjectID); err != nil {
		return nil, err
	}
	if err := in.validate(issueID, false); err != nil {
		return nil, err
	}

	comment := models.Comment{
		Description: *in.Description,
		IssueID:     issue.ID,
		AuthorID:    userID,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, err
	}
	return findComment(ctx, s.db, projectID, issueID, comment.UUID)
}

func (s *CommentService) Get(ctx context.Context, userID, projectID, issueID uint, commentUUID string) (*models.Comment, error) {
	if _, err := s.parents(ctx, projectID, issueID); err != nil {
		return nil, err
	}
	comment, err := findComment(ctx, s.db, projectID, issueID, commentUUID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireObject(ctx, userID, authz.KindComment, authz.ActionRetrieve, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, userID, projectID, issueID uint, commentUUID string, in *CommentInput, partial bool) (*models.Comment, error) {
	if _, err := s.parents(ctx, projectID, issueID); err != nil {
		return nil, err
	}
	comment, err := findComment(ctx, s.db, projectID, issueID, commentUUID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireObject(ctx, userID, authz.KindComment, authz.ActionUpdate, comment); err != nil {
		return nil, err
	}
	if err := in.validate(issueID, partial); err != nil {
		return nil, err
	}
	if in.Description != nil {
		if err := s.db.WithContext(ctx).Model(&models.Comment{ID: comment.ID}).Update("description", *in.Description).Error; err != nil {
			return nil, err
		}
		comment.Description = *in.Description
	}
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, userID, projectID, issueID uint, commentUUID string) error {
	if _, err := s.parents(ctx, projectID, issueID); err != nil {
		return err
	}
	comment, err := findComment(ctx, s.db, projectID, issueID, commentUUID)
	if err != nil {
		return err
	}
	if err := s.gate.RequireObject(ctx, userID, authz.KindComment, authz.ActionDelete, comment); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&models.Comment{}, comment.ID).Error
}
