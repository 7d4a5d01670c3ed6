package project

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Geek-Mradul/mintern/internal/database"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidStatus   = errors.New("invalid status, must be APPROVED or REJECTED")
)

type NewProject struct {
	Title       string
	Description string
	Category    *string
}

type ProjectService struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

func publicAuthor(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "role")
}

func adminAuthor(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email", "role")
}

// Create stores a new project in PENDING. An admin has to approve it before it
// shows up publicly.
func (s *ProjectService) Create(ctx context.Context, authorID string, input NewProject) (*database.Project, error) {
	project := database.Project{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Status:      database.ProjectStatusPending,
		AuthorID:    authorID,
	}

	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListApproved returns the public catalogue, newest first.
func (s *ProjectService) ListApproved(ctx context.Context) ([]database.Project, error) {
	var projects []database.Project

	result := s.db.WithContext(ctx).
		Preload("Author", publicAuthor).
		Where("status = ?", database.ProjectStatusApproved).
		Order("created_at DESC").
		Find(&projects)
	if result.Error != nil {
		return nil, result.Error
	}
	return projects, nil
}

func (s *ProjectService) ListByAuthor(ctx context.Context, authorID string) ([]database.Project, error) {
	var projects []database.Project

	result := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&projects)
	if result.Error != nil {
		return nil, result.Error
	}
	return projects, nil
}

// GetApproved hides pending and rejected projects behind ErrProjectNotFound.
func (s *ProjectService) GetApproved(ctx context.Context, id string) (*database.Project, error) {
	var project database.Project

	result := s.db.WithContext(ctx).
		Preload("Author", publicAuthor).
		Where("id = ? AND status = ?", id, database.ProjectStatusApproved).
		First(&project)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, result.Error
	}
	return &project, nil
}

func (s *ProjectService) ListAll(ctx context.Context) ([]database.Project, error) {
	var projects []database.Project

	result := s.db.WithContext(ctx).
		Preload("Author", adminAuthor).
		Order("created_at DESC").
		Find(&projects)
	if result.Error != nil {
		return nil, result.Error
	}
	return projects, nil
}

// SetStatus moves a project to APPROVED or REJECTED. PENDING cannot be set
// back through this call.
func (s *ProjectService) SetStatus(ctx context.Context, id string, status database.ProjectStatus) (*database.Project, error) {
	if status != database.ProjectStatusApproved && status != database.ProjectStatusRejected {
		return nil, ErrInvalidStatus
	}

	result := s.db.WithContext(ctx).Model(&database.Project{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrProjectNotFound
	}

	var project database.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}
