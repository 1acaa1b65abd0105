package models

import "time"

// Contributor grants a user access to a project. The (user, project) pair is unique.
type Contributor struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex:idx_contributor_user_project;not null" json:"-"`
	User        *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	ProjectID   uint      `gorm:"uniqueIndex:idx_contributor_user_project;index;not null" json:"project"`
	Project     *Project  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedTime time.Time `gorm:"autoCreateTime" json:"created_time"`
}

func (Contributor) TableName() string { return "contributors" }

func (c *Contributor) OwningProjectID() uint { return c.ProjectID }

// AuthorUserID is the author of the owning project, who manages membership.
// It is zero unless Project was loaded.
func (c *Contributor) AuthorUserID() uint {
	if c.Project == nil {
		return 0
	}
	return c.Project.AuthorID
}
