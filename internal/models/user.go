package models

import "time"

// User is an account that can author projects, issues and comments.
type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Username        string     `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email           string     `gorm:"size:254" json:"email"`
	Password        string     `gorm:"size:255;not null" json:"-"` // bcrypt hash
	DateBirth       *Date      `gorm:"type:date" json:"date_birth"`
	CanBeContacted  bool       `gorm:"not null;default:false" json:"can_be_contacted"`
	CanDataBeShared bool       `gorm:"not null;default:false" json:"can_data_be_shared"`
	IsActive        bool       `gorm:"not null;default:true" json:"-"`
	LastLogin       *time.Time `json:"-"`
	CreatedTime     time.Time  `gorm:"autoCreateTime" json:"created_time"`
}

func (User) TableName() string { return "users" }

// OwningProjectID is zero: accounts do not belong to a project.
func (u *User) OwningProjectID() uint { return 0 }

// AuthorUserID is the account itself, which is the only one allowed to change it.
func (u *User) AuthorUserID() uint { return u.ID }
