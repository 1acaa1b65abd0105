package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/softdesk/softdesk-api/internal/models"
	"github.com/softdesk/softdesk-api/pkg/response"
	"gorm.io/gorm"
)

const (
	msgRequired  = "this field is required"
	msgBlank     = "this field may not be blank"
	msgMismatch  = "does not match the resource addressed by the URL"
	msgNotUnique = "the fields user, project must make a unique set"
)

// fieldErrors collects per-field validation failures.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return response.NewValidation(f)
}

// requireString checks a string field under full-write rules: present unless
// partial, never blank when present.
func (f fieldErrors) requireString(field string, v *string, partial bool) {
	if v == nil {
		if !partial {
			f.add(field, msgRequired)
		}
		return
	}
	if strings.TrimSpace(*v) == "" {
		f.add(field, msgBlank)
	}
}

func invalidChoice(v string) string {
	return fmt.Sprintf("%q is not a valid choice", v)
}

func invalidPK(id uint) string {
	return fmt.Sprintf("invalid pk %q - object does not exist", fmt.Sprint(id))
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate")
}

// notFound turns a missing row into the 404 reported to clients.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NewNotFound(what + " not found")
	}
	return err
}

// paginate counts the rows of query and loads the requested page into dest,
// which must point at a slice.
func paginate(query *gorm.DB, page response.PageRequest, dest interface{}) (*response.Page, error) {
	base := query.Session(&gorm.Session{})

	var count int64
	if err := base.Count(&count).Error; err != nil {
		return nil, err
	}
	offset, err := page.Offset(count)
	if err != nil {
		return nil, err
	}
	if err := base.Offset(offset).Limit(response.PageSize).Find(dest).Error; err != nil {
		return nil, err
	}
	return page.Build(count, dest), nil
}

func findProject(ctx context.Context, db *gorm.DB, projectID uint) (*models.Project, error) {
	var p models.Project
	if err := db.WithContext(ctx).Preload("Author").First(&p, projectID).Error; err != nil {
		return nil, notFound(err, "project")
	}
	return &p, nil
}

// findIssue loads an issue that must belong to projectID; an issue living
// under another project is reported as missing.
func findIssue(ctx context.Context, db *gorm.DB, projectID, issueID uint) (*models.Issue, error) {
	var i models.Issue
	err := db.WithContext(ctx).
		Preload("Author").
		Preload("Assignee").
		Where("id = ? AND project_id = ?", issueID, projectID).
		First(&i).Error
	if err != nil {
		return nil, notFound(err, "issue")
	}
	return &i, nil
}

// findComment loads a comment by its external identifier under the given
// project and issue.
func findComment(ctx context.Context, db *gorm.DB, projectID, issueID uint, commentUUID string) (*models.Comment, error) {
	var c models.Comment
	err := db.WithContext(ctx).
		Preload("Author").
		Preload("Issue").
		Where("uuid = ? AND issue_id = ?", commentUUID, issueID).
		First(&c).Error
	if err != nil {
		return nil, notFound(err, "comment")
	}
	if c.Issue == nil || c.Issue.ProjectID != projectID {
		return nil, response.NewNotFound("comment not found")
	}
	return &c, nil
}

func userExists(ctx context.Context, db *gorm.DB, userID uint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&n).Error
	return n > 0, err
}
