package models

import "time"

type Issue struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"size:100;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Status      IssueStatus   `gorm:"size:20;not null;default:TODO" json:"status"`
	Priority    IssuePriority `gorm:"size:20;not null;default:LOW" json:"priority"`
	Tag         IssueTag      `gorm:"size:20;not null" json:"tag"`
	ProjectID   uint          `gorm:"index;not null" json:"project"`
	Project     *Project      `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID    uint          `gorm:"index;not null" json:"-"`
	Author      *User         `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	AssigneeID  *uint         `gorm:"index" json:"-"`
	Assignee    *User         `gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL" json:"assignee"`
	CreatedTime time.Time     `gorm:"autoCreateTime" json:"created_time"`
}

func (Issue) TableName() string { return "issues" }

func (i *Issue) OwningProjectID() uint { return i.ProjectID }
func (i *Issue) AuthorUserID() uint    { return i.AuthorID }
