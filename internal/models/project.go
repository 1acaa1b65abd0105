package models

import "time"

// Project is the root of the tracker hierarchy. AuthorID never changes after
// creation and the author always holds a Contributor row.
type Project struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"size:100;not null" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Type        ProjectType `gorm:"size:20;not null" json:"type"`
	AuthorID    uint        `gorm:"index;not null" json:"-"`
	Author      *User       `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	CreatedTime time.Time   `gorm:"autoCreateTime" json:"created_time"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) OwningProjectID() uint { return p.ID }
func (p *Project) AuthorUserID() uint    { return p.AuthorID }
