package analytics

import (
	"context"

	"gorm.io/gorm"

	"github.com/Geek-Mradul/mintern/internal/database"
)

type StatusCount struct {
	Status database.ProjectStatus `json:"status"`
	Count  int64                  `json:"count"`
}

type Stats struct {
	UserCount        int64         `json:"userCount"`
	ProjectCount     int64         `json:"projectCount"`
	AppCount         int64         `json:"appCount"`
	ProjectsByStatus []StatusCount `json:"projectsByStatus"`
}

// CategoryCount is shaped for the admin dashboard charts.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type AnalyticsService struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

func (s *AnalyticsService) Stats(ctx context.Context) (*Stats, error) {
	db := s.db.WithContext(ctx)
	var stats Stats

	if err := db.Model(&database.User{}).Count(&stats.UserCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&database.Project{}).Count(&stats.ProjectCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&database.Application{}).Count(&stats.AppCount).Error; err != nil {
		return nil, err
	}

	stats.ProjectsByStatus = []StatusCount{}
	result := db.Model(&database.Project{}).
		Select("status, count(*) AS count").
		Group("status").
		Order("status").
		Scan(&stats.ProjectsByStatus)
	if result.Error != nil {
		return nil, result.Error
	}

	return &stats, nil
}

// Categories counts projects per category, most popular first. Projects
// without a category are left out.
func (s *AnalyticsService) Categories(ctx context.Context) ([]CategoryCount, error) {
	counts := []CategoryCount{}

	result := s.db.WithContext(ctx).Model(&database.Project{}).
		Select("category AS name, count(id) AS count").
		Where("category IS NOT NULL").
		Group("category").
		Order("count DESC").
		Scan(&counts)
	if result.Error != nil {
		return nil, result.Error
	}
	return counts, nil
}
