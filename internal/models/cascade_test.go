package models_test

import (
	"context"
	"testing"

	"github.com/softdesk/softdesk-api/internal/models"
	"github.com/softdesk/softdesk-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func TestDeleteProjectCascade(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	doomed := testutil.CreateProject(t, db, alice, "Doomed")
	testutil.AddContributor(t, db, doomed, bob)
	issue := testutil.CreateIssue(t, db, doomed, bob, "crash")
	testutil.CreateComment(t, db, issue, alice, "confirmed")

	kept := testutil.CreateProject(t, db, alice, "Kept")
	keptIssue := testutil.CreateIssue(t, db, kept, alice, "other")
	testutil.CreateComment(t, db, keptIssue, alice, "stays")

	require.NoError(t, models.DeleteProjectCascade(context.Background(), db, doomed.ID))

	assert.Zero(t, count(t, db, &models.Project{}, "id = ?", doomed.ID))
	assert.Zero(t, count(t, db, &models.Contributor{}, "project_id = ?", doomed.ID))
	assert.Zero(t, count(t, db, &models.Issue{}, "project_id = ?", doomed.ID))
	assert.Zero(t, count(t, db, &models.Comment{}, "issue_id = ?", issue.ID))

	assert.EqualValues(t, 1, count(t, db, &models.Project{}, "id = ?", kept.ID))
	assert.EqualValues(t, 1, count(t, db, &models.Comment{}, "issue_id = ?", keptIssue.ID))
	assert.EqualValues(t, 2, count(t, db, &models.User{}, "1 = 1"), "users are never owned by projects")
}

func TestDeleteIssueCascade(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	p := testutil.CreateProject(t, db, alice, "P")
	issue := testutil.CreateIssue(t, db, p, alice, "gone")
	sibling := testutil.CreateIssue(t, db, p, alice, "sibling")
	testutil.CreateComment(t, db, issue, alice, "a")
	testutil.CreateComment(t, db, issue, alice, "b")
	testutil.CreateComment(t, db, sibling, alice, "c")

	require.NoError(t, models.DeleteIssueCascade(context.Background(), db, issue.ID))

	assert.Zero(t, count(t, db, &models.Issue{}, "id = ?", issue.ID))
	assert.Zero(t, count(t, db, &models.Comment{}, "issue_id = ?", issue.ID))
	assert.EqualValues(t, 1, count(t, db, &models.Comment{}, "issue_id = ?", sibling.ID))
	assert.EqualValues(t, 1, count(t, db, &models.Contributor{}, "project_id = ?", p.ID))
}

func TestDeleteUserCascade(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	owned := testutil.CreateProject(t, db, bob, "Bob's")
	ownedIssue := testutil.CreateIssue(t, db, owned, bob, "inside bob's project")

	shared := testutil.CreateProject(t, db, alice, "Alice's")
	testutil.AddContributor(t, db, shared, bob)
	bobIssue := testutil.CreateIssue(t, db, shared, bob, "by bob")
	aliceComment := testutil.CreateComment(t, db, bobIssue, alice, "alice on bob's issue")

	assigned := testutil.CreateIssue(t, db, shared, alice, "assigned to bob")
	require.NoError(t, db.Model(assigned).Update("assignee_id", bob.ID).Error)
	bobComment := testutil.CreateComment(t, db, assigned, bob, "bob's comment")

	require.NoError(t, db.Create(&models.RefreshToken{UserID: bob.ID, TokenHash: "h"}).Error)

	require.NoError(t, models.DeleteUserCascade(context.Background(), db, bob.ID))

	assert.Zero(t, count(t, db, &models.User{}, "id = ?", bob.ID))
	assert.Zero(t, count(t, db, &models.Project{}, "id = ?", owned.ID))
	assert.Zero(t, count(t, db, &models.Issue{}, "id IN ?", []uint{ownedIssue.ID, bobIssue.ID}))
	assert.Zero(t, count(t, db, &models.Comment{}, "id IN ?", []uint{aliceComment.ID, bobComment.ID}))
	assert.Zero(t, count(t, db, &models.Contributor{}, "user_id = ?", bob.ID))
	assert.Zero(t, count(t, db, &models.RefreshToken{}, "user_id = ?", bob.ID))

	var survivor models.Issue
	require.NoError(t, db.First(&survivor, assigned.ID).Error)
	assert.Nil(t, survivor.AssigneeID, "assignee is cleared, the issue survives")
	assert.EqualValues(t, 1, count(t, db, &models.Contributor{}, "project_id = ? AND user_id = ?", shared.ID, alice.ID))
}

func TestContributorPairIsUnique(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	p := testutil.CreateProject(t, db, alice, "P")

	err := db.Create(&models.Contributor{ProjectID: p.ID, UserID: alice.ID}).Error
	assert.Error(t, err)
}

func TestCommentUUIDIsServerGenerated(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.CreateUser(t, db, "alice")
	p := testutil.CreateProject(t, db, alice, "P")
	issue := testutil.CreateIssue(t, db, p, alice, "i")

	c := &models.Comment{UUID: "client-chosen", Description: "x", IssueID: issue.ID, AuthorID: alice.ID}
	require.NoError(t, db.Create(c).Error)

	assert.NotEqual(t, "client-chosen", c.UUID)
	assert.Len(t, c.UUID, 36)
}
