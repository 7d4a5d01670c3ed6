package application

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Geek-Mradul/mintern/internal/database"
	"github.com/Geek-Mradul/mintern/internal/platform/project"
)

var ErrAlreadyApplied = errors.New("you have already applied to this project")

type ApplicationService struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *ApplicationService {
	return &ApplicationService{db: db}
}

// Apply records an application to an approved project. The unique index on
// (applicant_id, project_id) decides duplicates, so two concurrent requests
// cannot both succeed. The project is returned with its author so the caller
// can notify them.
func (s *ApplicationService) Apply(ctx context.Context, applicantID, projectID string) (*database.Application, *database.Project, error) {
	db := s.db.WithContext(ctx)

	var p database.Project
	result := db.Preload("Author").
		Where("id = ? AND status = ?", projectID, database.ProjectStatusApproved).
		First(&p)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil, project.ErrProjectNotFound
		}
		return nil, nil, result.Error
	}

	app := database.Application{
		ApplicantID: applicantID,
		ProjectID:   projectID,
		Status:      database.ApplicationStatusPending,
	}
	if err := db.Create(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, ErrAlreadyApplied
		}
		return nil, nil, err
	}

	app.Project = &database.ProjectSummary{ID: p.ID, Title: p.Title, Category: p.Category}
	return &app, &p, nil
}

func (s *ApplicationService) ListByApplicant(ctx context.Context, applicantID string) ([]database.Application, error) {
	var apps []database.Application

	result := s.db.WithContext(ctx).
		Preload("Project").
		Where("applicant_id = ?", applicantID).
		Order("created_at DESC").
		Find(&apps)
	if result.Error != nil {
		return nil, result.Error
	}
	return apps, nil
}

func (s *ApplicationService) ListAll(ctx context.Context) ([]database.Application, error) {
	var apps []database.Application

	result := s.db.WithContext(ctx).
		Preload("Applicant", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email", "role")
		}).
		Preload("Project").
		Order("created_at DESC").
		Find(&apps)
	if result.Error != nil {
		return nil, result.Error
	}
	return apps, nil
}
