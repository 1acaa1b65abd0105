package services

import (
	"context"
	"time"

	"github.com/softdesk/softdesk-api/internal/authz"
	"github.com/softdesk/softdesk-api/internal/models"
	"github.com/softdesk/softdesk-api/internal/utils"
	"github.com/softdesk/softdesk-api/pkg/response"
	"gorm.io/gorm"
)

// MinimumAge is the youngest age, in whole years, an account may declare.
const MinimumAge = 15

const (
	msgTooYoung      = "user must be at least 15 years old"
	msgUsernameTaken = "a user with that username already exists"
)

type UserService struct {
	db   *gorm.DB
	gate *authz.Gate
	now  func() time.Time
}

func NewUserService(db *gorm.DB, gate *authz.Gate) *UserService {
	return &UserService{db: db, gate: gate, now: time.Now}
}

// UserInput is used for registration and account updates. Password is write-only.
type UserInput struct {
	Username        *string      `json:"username" binding:"omitempty,max=150"`
	Email           *string      `json:"email" binding:"omitempty,email,max=254"`
	Password        *string      `json:"password" binding:"omitempty,min=8,max=72"`
	DateBirth       *models.Date `json:"date_birth"`
	CanBeContacted  *bool        `json:"can_be_contacted"`
	CanDataBeShared *bool        `json:"can_data_be_shared"`
}

func (s *UserService) validate(ctx context.Context, in *UserInput, selfID uint, partial bool) error {
	errs := fieldErrors{}
	errs.requireString("username", in.Username, partial)
	errs.requireString("password", in.Password, partial)
	if in.DateBirth != nil && in.DateBirth.AgeAt(s.now()) < MinimumAge {
		errs.add("date_birth", msgTooYoung)
	}
	if in.Username != nil && *in.Username != "" {
		var n int64
		err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("username = ? AND id <> ?", *in.Username, selfID).
			Count(&n).Error
		if err != nil {
			return err
		}
		if n > 0 {
			errs.add("username", msgUsernameTaken)
		}
	}
	return errs.err()
}

func (in *UserInput) apply(u *models.User) error {
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return err
		}
		u.Password = hash
	}
	if in.DateBirth != nil {
		u.DateBirth = in.DateBirth
	}
	if in.CanBeContacted != nil {
		u.CanBeContacted = *in.CanBeContacted
	}
	if in.CanDataBeShared != nil {
		u.CanDataBeShared = *in.CanDataBeShared
	}
	return nil
}

// Register creates an account. It is open to anonymous callers.
func (s *UserService) Register(ctx context.Context, in *UserInput) (*models.User, error) {
	if err := s.gate.RequireCollection(ctx, 0, authz.KindUser, authz.ActionCreate, 0); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, in, 0, false); err != nil {
		return nil, err
	}

	user := models.User{IsActive: true}
	if err := in.apply(&user); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicate(err) {
			return nil, response.NewFieldError("username", msgUsernameTaken)
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) List(ctx context.Context, userID uint, page response.PageRequest) (*response.Page, error) {
	if err := s.gate.RequireCollection(ctx, userID, authz.KindUser, authz.ActionList, 0); err != nil {
		return nil, err
	}
	users := make([]models.User, 0)
	query := s.db.WithContext(ctx).Model(&models.User{}).Scopes(authz.Ordered("users"))
	return paginate(query, page, &users)
}

func (s *UserService) find(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

// Me returns the account of the authenticated caller.
func (s *UserService) Me(ctx context.Context, userID uint) (*models.User, error) {
	if userID == 0 {
		return nil, response.NewUnauthorized("authentication credentials were not provided")
	}
	return s.find(ctx, userID)
}

func (s *UserService) Get(ctx context.Context, userID, targetID uint) (*models.User, error) {
	user, err := s.find(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireObject(ctx, userID, authz.KindUser, authz.ActionRetrieve, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update changes an account; only its owner may do so.
func (s *UserService) Update(ctx context.Context, userID, targetID uint, in *UserInput, partial bool) (*models.User, error) {
	user, err := s.find(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireObject(ctx, userID, authz.KindUser, authz.ActionUpdate, user); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, in, user.ID, partial); err != nil {
		return nil, err
	}
	if err := in.apply(user); err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(user).
		Select("username", "email", "password", "date_birth", "can_be_contacted", "can_data_be_shared").
		Updates(user).Error
	if err != nil {
		if isDuplicate(err) {
			return nil, response.NewFieldError("username", msgUsernameTaken)
		}
		return nil, err
	}
	return user, nil
}

// Delete removes the account and everything it authored.
func (s *UserService) Delete(ctx context.Context, userID, targetID uint) error {
	user, err := s.find(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.gate.RequireObject(ctx, userID, authz.KindUser, authz.ActionDelete, user); err != nil {
		return err
	}
	return models.DeleteUserCascade(ctx, s.db, user.ID)
}
