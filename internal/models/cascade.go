package models

import (
	"context"

	"gorm.io/gorm"
)

// DeleteProjectCascade removes a project together with its comments, issues
// and contributors in one transaction.
func DeleteProjectCascade(ctx context.Context, db *gorm.DB, projectID uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteProjects(tx, []uint{projectID})
	})
}

// DeleteIssueCascade removes an issue and its comments in one transaction.
func DeleteIssueCascade(ctx context.Context, db *gorm.DB, issueID uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteIssues(tx, []uint{issueID})
	})
}

// DeleteUserCascade removes a user and everything the user authored. Issues
// merely assigned to the user survive with the assignee cleared.
func DeleteUserCascade(ctx context.Context, db *gorm.DB, userID uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var projectIDs []uint
		if err := tx.Model(&Project{}).Where("author_id = ?", userID).Pluck("id", &projectIDs).Error; err != nil {
			return err
		}
		if err := deleteProjects(tx, projectIDs); err != nil {
			return err
		}

		var issueIDs []uint
		if err := tx.Model(&Issue{}).Where("author_id = ?", userID).Pluck("id", &issueIDs).Error; err != nil {
			return err
		}
		if err := deleteIssues(tx, issueIDs); err != nil {
			return err
		}

		if err := tx.Where("author_id = ?", userID).Delete(&Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&Issue{}).Where("assignee_id = ?", userID).Update("assignee_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&Contributor{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&User{}, userID).Error
	})
}

func deleteProjects(tx *gorm.DB, projectIDs []uint) error {
	if len(projectIDs) == 0 {
		return nil
	}
	var issueIDs []uint
	if err := tx.Model(&Issue{}).Where("project_id IN ?", projectIDs).Pluck("id", &issueIDs).Error; err != nil {
		return err
	}
	if err := deleteIssues(tx, issueIDs); err != nil {
		return err
	}
	if err := tx.Where("project_id IN ?", projectIDs).Delete(&Contributor{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", projectIDs).Delete(&Project{}).Error
}

func deleteIssues(tx *gorm.DB, issueIDs []uint) error {
	if len(issueIDs) == 0 {
		return nil
	}
	if err := tx.Where("issue_id IN ?", issueIDs).Delete(&Comment{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", issueIDs).Delete(&Issue{}).Error
}
