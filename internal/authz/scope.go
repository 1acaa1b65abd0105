package authz

import (
	"github.com/softdesk/softdesk-api/internal/models"
	"gorm.io/gorm"
)

// Scope narrows a query to the rows a user may see. Every scope also fixes
// the order to ascending id so pages stay stable between requests.
type Scope func(*gorm.DB) *gorm.DB

// contributedProjects selects the ids of projects userID contributes to.
func contributedProjects(db *gorm.DB, userID uint) *gorm.DB {
	return db.Session(&gorm.Session{NewDB: true}).
		Model(&models.Contributor{}).
		Select("project_id").
		Where("user_id = ?", userID)
}

// VisibleProjects keeps projects the user contributes to.
func VisibleProjects(userID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("projects.id IN (?)", contributedProjects(db, userID)).
			Order("projects.id ASC")
	}
}

// VisibleContributors keeps the contributor rows of projectID when the user
// is one of its contributors.
func VisibleContributors(userID, projectID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("contributors.project_id = ?", projectID).
			Where("contributors.project_id IN (?)", contributedProjects(db, userID)).
			Order("contributors.id ASC")
	}
}

// VisibleIssues keeps the issues of projectID when the user contributes to it.
func VisibleIssues(userID, projectID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("issues.project_id = ?", projectID).
			Where("issues.project_id IN (?)", contributedProjects(db, userID)).
			Order("issues.id ASC")
	}
}

// VisibleComments keeps the comments of issueID when the user contributes to
// the issue's project.
func VisibleComments(userID, issueID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		visibleIssues := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.Issue{}).
			Select("id").
			Where("project_id IN (?)", contributedProjects(db, userID))
		return db.Where("comments.issue_id = ?", issueID).
			Where("comments.issue_id IN (?)", visibleIssues).
			Order("comments.id ASC")
	}
}

// Ordered applies the stable ascending-id order to listings that are not
// filtered by contributorship.
func Ordered(table string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(table + ".id ASC")
	}
}
