// Package testutil provides an isolated in-memory database and fixtures for
// package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/softdesk/softdesk-api/internal/config"
	"github.com/softdesk/softdesk-api/internal/models"
	"gorm.io/gorm"
)

// NewDB opens a private, migrated sqlite database that lives for the test.
// The pool holds a single connection, so code running inside a transaction
// must only use the transaction handle.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := models.Open(&config.DatabaseConfig{Driver: "sqlite", DSN: dsn, LogLevel: "silent"})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// CreateUser inserts a user whose password hash is a placeholder; use the
// user service when a real login is needed.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x", IsActive: true}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// CreateProject inserts a project authored by author together with the
// author's contributor row.
func CreateProject(t testing.TB, db *gorm.DB, author *models.User, name string) *models.Project {
	t.Helper()
	p := &models.Project{Name: name, Type: models.ProjectTypeBackend, AuthorID: author.ID}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	AddContributor(t, db, p, author)
	return p
}

func AddContributor(t testing.TB, db *gorm.DB, p *models.Project, u *models.User) *models.Contributor {
	t.Helper()
	c := &models.Contributor{ProjectID: p.ID, UserID: u.ID}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("add contributor %s to %s: %v", u.Username, p.Name, err)
	}
	return c
}

func CreateIssue(t testing.TB, db *gorm.DB, p *models.Project, author *models.User, title string) *models.Issue {
	t.Helper()
	i := &models.Issue{
		Title:     title,
		Status:    models.IssueStatusTodo,
		Priority:  models.IssuePriorityLow,
		Tag:       models.IssueTagBug,
		ProjectID: p.ID,
		AuthorID:  author.ID,
	}
	if err := db.Create(i).Error; err != nil {
		t.Fatalf("create issue %s: %v", title, err)
	}
	return i
}

func CreateComment(t testing.TB, db *gorm.DB, i *models.Issue, author *models.User, text string) *models.Comment {
	t.Helper()
	c := &models.Comment{Description: text, IssueID: i.ID, AuthorID: author.ID}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return c
}
