package authz

import (
	"context"

	"github.com/softdesk/softdesk-api/internal/models"
	"gorm.io/gorm"
)

// RoleResolver answers the two role questions every policy is built from.
// Implementations are read-only.
type RoleResolver interface {
	IsProjectAuthor(ctx context.Context, userID, projectID uint) (bool, error)
	IsContributor(ctx context.Context, userID, projectID uint) (bool, error)
}

// DBResolver resolves roles against the entity store.
type DBResolver struct {
	db *gorm.DB
}

func NewDBResolver(db *gorm.DB) *DBResolver {
	return &DBResolver{db: db}
}

func (r *DBResolver) IsProjectAuthor(ctx context.Context, userID, projectID uint) (bool, error) {
	if userID == 0 || projectID == 0 {
		return false, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND author_id = ?", projectID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *DBResolver) IsContributor(ctx context.Context, userID, projectID uint) (bool, error) {
	if userID == 0 || projectID == 0 {
		return false, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Contributor{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&n).Error
	return n > 0, err
}
