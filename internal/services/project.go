package services

import (
	"context"

	"github.com/softdesk/softdesk-api/internal/authz"
	"github.com/softdesk/softdesk-api/internal/models"
	"github.com/softdesk/softdesk-api/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db   *gorm.DB
	gate *authz.Gate
}

func NewProjectService(db *gorm.DB, gate *authz.Gate) *ProjectService {
	return &ProjectService{db: db, gate: gate}
}

// ProjectInput carries the writable project fields. Nil means "not sent".
type ProjectInput struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
}

func (in *ProjectInput) validate(partial bool) error {
	errs := fieldErrors{}
	errs.requireString("name", in.Name, partial)
	if in.Type == nil {
		if !partial {
			errs.add("type", msgRequired)
		}
	} else if !models.ProjectType(*in.Type).Valid() {
		errs.add("type", invalidChoice(*in.Type))
	}
	return errs.err()
}

func (in *ProjectInput) apply(p *models.Project) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Type != nil {
		p.Type = models.ProjectType(*in.Type)
	}
}

// List returns the projects the user contributes to.
func (s *ProjectService) List(ctx context.Context, userID uint, page response.PageRequest) (*response.Page, error) {
	if err := s.gate.RequireCollection(ctx, userID, authz.KindProject, authz.ActionList, 0); err != nil {
		return nil, err
	}
	projects := make([]models.Project, 0)
	query := s.db.WithContext(ctx).Model(&models.Project{}).
		Scopes(authz.VisibleProjects(userID)).
		Preload("Author")
	return paginate(query, page, &projects)
}

// Create stores a project authored by userID and enrolls the author as its
// first contributor. Either both rows are written or neither.
func (s *ProjectService) Create(ctx context.Context, userID uint, in *ProjectInput) (*models.Project, error) {
	if err := s.gate.RequireCollection(ctx, userID, authz.KindProject, authz.ActionCreate, 0); err != nil {
		return nil, err
	}
	if err := in.validate(false); err != nil {
		return nil, err
	}

	project := models.Project{AuthorID: userID}
	in.apply(&project)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		return tx.Create(&models.Contributor{UserID: userID, ProjectID: project.ID}).Error
	})
	if err != nil {
		return nil, err
	}
	return findProject(ctx, s.db, project.ID)
}

func (s *ProjectService) Get(ctx context.Context, userID, projectID uint) (*models.Project, error) {
	project, err := findProject(ctx, s.db, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireObject(ctx, userID, authz.KindProject, authz.ActionRetrieve, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Update applies a full (partial=false) or partial write. The author never changes.
func (s *ProjectService) Update(ctx context.Context, userID, projectID uint, in *ProjectInput, partial bool) (*models.Project, error) {
	project, err := findProject(ctx, s.db, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.RequireObject(ctx, userID, authz.KindProject, authz.ActionUpdate, project); err != nil {
		return nil, err
	}
	if err := in.validate(partial); err != nil {
		return nil, err
	}

	in.apply(project)
	if err := s.db.WithContext(ctx).Model(project).
		Select("name", "description", "type").
		Updates(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes the project with its contributors, issues and comments.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID uint) error {
	project, err := findProject(ctx, s.db, projectID)
	if err != nil {
		return err
	}
	if err := s.gate.RequireObject(ctx, userID, authz.KindProject, authz.ActionDelete, project); err != nil {
		return err
	}
	return models.DeleteProjectCascade(ctx, s.db, project.ID)
}
