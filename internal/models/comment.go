package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is addressed externally by UUID, never by ID.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UUID        string    `gorm:"uniqueIndex;size:36;not null" json:"uuid"`
	Description string    `gorm:"type:text;not null" json:"description"`
	IssueID     uint      `gorm:"index;not null" json:"issue"`
	Issue       *Issue    `gorm:"foreignKey:IssueID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID    uint      `gorm:"index;not null" json:"-"`
	Author      *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	CreatedTime time.Time `gorm:"autoCreateTime" json:"created_time"`
}

func (Comment) TableName() string { return "comments" }

// BeforeCreate always assigns a fresh UUID; the identifier is never taken from input.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	c.UUID = uuid.NewString()
	return nil
}

// OwningProjectID walks through the issue; it is zero unless Issue was loaded.
func (c *Comment) OwningProjectID() uint {
	if c.Issue == nil {
		return 0
	}
	return c.Issue.ProjectID
}

func (c *Comment) AuthorUserID() uint { return c.AuthorID }
