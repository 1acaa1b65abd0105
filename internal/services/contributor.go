package services

import (
	"context"

	"github.com/softdesk/softdesk-api/internal/authz"
	"github.com/softdesk/softdesk-api/internal/models"
	"github.com/softdesk/softdesk-api/pkg/response"
	"gorm.io/gorm"
)

const msgAuthorMembership = "the project author's membership cannot be removed or reassigned"

type ContributorService struct {
	db   *gorm.DB
	gate *authz.Gate
}

func NewContributorService(db *gorm.DB, gate *authz.Gate) *ContributorService {
	return &ContributorService{db: db, gate: gate}
}

// ContributorInput names the user to enroll. Project, when sent, must repeat
// the project of the URL.
type ContributorInput struct {
	User    *uint `json:"user"`
	Project *uint `json:"project"`
}

func (s *ContributorService) validate(ctx context.Context, in *ContributorInput, projectID uint, partial bool) error {
	errs := fieldErrors{}
	if in.Project != nil && *in.Project != projectID {
		errs.add("project", msgMismatch)
	}
	if in.User == nil {
		if !partial {
			errs.add("user", msgRequired)
		}
	} else {
		ok, err := userExists(ctx, s.db, *in.User)
		if err != nil {
			return err
		}
		if !ok {
			errs.add("user", invalidPK(*in.User))
		}
	}
	return errs.err()
}

func (s *ContributorService) ensureUnique(ctx context.Context, userID, projectID, exceptID uint) error {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Contributor{}).
		Where("user_id = ? AND project_id = ? AND id <> ?", userID, projectID, exceptID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return response.NewFieldError("non_field_errors", msgNotUnique)
	}
	return nil
}

func (s *ContributorService) find(ctx context.Context, projectID, contributorID uint) (*models.Contributor, error) {
	var c models.Contributor
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Project").
		Where("id = ? AND project_id = ?", contributorID, projectID).
		First(&c).Error
	if err != nil {
		return nil, notFound(err, "contributor")
	}
	return &c, nil
}

// List returns the members of projectID; only contributors see any rows.
func (s *ContributorService) List(ctx context.Context, userID, projectID uint, page response.PageRequest) (*response.Page, error) {
	if _, err := findProject(ctx, s.db, projectID); err != nil {
		return nil, err
	}
	if err := s.gate.RequireCollection(ctx, userID, authz.KindContributor, authz.ActionList, projectID); err != nil {
		return nil, err
	}
	rows := make([]models.Contributor, 0)
	query := s.db.WithContext(ctx).Model(&models.Contributor{}).
		Scopes(authz.VisibleContributors(userID, projectID)).
		Preload("User")
	return paginate(query, page, &rows)
}

// Create enrolls the named user. Only the project author may do this.
func (s *ContributorService) Create(ctx context.Context, userID, projectID uint, in *ContributorInput) (*models.Contributor, error) {
	if _, err := findProject(ctx, s.db, projectID); err != nil {
		return nil, err
	}
	if err := s.gate.RequireCollection(ctx, userID, authz.KindContributor, authz.ActionCreate, projectID); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, in, projectID, false); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, *in.User, projectID, 0); err != nil {
		return nil, err
	}

	row := models.Contributor{UserID: *in.User, ProjectID: projectID}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return nil, response.NewFieldError("non_field_errors", msgNotUnique)
		}
		return nil, err
	}
	return s.find(ctx, projectID, row.ID)
}

func (s *ContributorService) Get(ctx context.Context, userID, projectID, contributorID uint) (*models.Contributor, error) {
	row, err := s.find(ctx, projectID, contributorID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireObject(ctx, userID, authz.KindContributor, authz.ActionRetrieve, row); err != nil {
		return nil, err
	}
	return row, nil
}

// Update points a membership at another user. The author's own row is fixed.
func (s *ContributorService) Update(ctx context.Context, userID, projectID, contributorID uint, in *ContributorInput, partial bool) (*models.Contributor, error) {
	row, err := s.find(ctx, projectID, contributorID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireObject(ctx, userID, authz.KindContributor, authz.ActionUpdate, row); err != nil {
		return nil, err
	}
	if err := s.validate(ctx, in, projectID, partial); err != nil {
		return nil, err
	}
	if in.User == nil || *in.User == row.UserID {
		return row, nil
	}
	if row.UserID == row.AuthorUserID() {
		return nil, response.NewFieldError("user", msgAuthorMembership)
	}
	if err := s.ensureUnique(ctx, *in.User, projectID, row.ID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Contributor{ID: row.ID}).Update("user_id", *in.User).Error; err != nil {
		if isDuplicate(err) {
			return nil, response.NewFieldError("non_field_errors", msgNotUnique)
		}
		return nil, err
	}
	return s.find(ctx, projectID, row.ID)
}

// Delete removes a membership other than the author's.
func (s *ContributorService) Delete(ctx context.Context, userID, projectID, contributorID uint) error {
	row, err := s.find(ctx, projectID, contributorID)
	if err != nil {
		return err
	}
	if err := s.gate.RequireObject(ctx, userID, authz.KindContributor, authz.ActionDelete, row); err != nil {
		return err
	}
	if row.UserID == row.AuthorUserID() {
		return response.NewFieldError("user", msgAuthorMembership)
	}
	return s.db.WithContext(ctx).Delete(&models.Contributor{}, row.ID).Error
}
