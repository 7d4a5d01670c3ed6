package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Geek-Mradul/mintern/internal/auth"
)

type ProjectStatus string

const (
	ProjectStatusPending  ProjectStatus = "PENDING"
	ProjectStatusApproved ProjectStatus = "APPROVED"
	ProjectStatusRejected ProjectStatus = "REJECTED"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusAccepted ApplicationStatus = "ACCEPTED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

// User is an account. PasswordHash is nil for accounts created through
// federated login and is never serialised.
type User struct {
	ID           string         `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash *string        `json:"-"`
	Name         string         `json:"name" gorm:"not null"`
	Role         auth.Role      `json:"role" gorm:"type:varchar(16);not null"`
	Bio          *string        `json:"bio"`
	Skills       pq.StringArray `json:"skills" gorm:"type:text[]"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (u *User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = auth.RoleOrdinary
	}
	if u.Skills == nil {
		u.Skills = pq.StringArray{}
	}
	return nil
}

// HasPassword reports whether the account can sign in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Author is the public projection of a project's owner.
type Author struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
	Role  auth.Role `json:"role"`
}

func (a *Author) TableName() string {
	return "users"
}

type Project struct {
	ID          string        `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string        `json:"title" gorm:"not null"`
	Description string        `json:"description" gorm:"not null"`
	Category    *string       `json:"category" gorm:"index"`
	Status      ProjectStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	AuthorID    string        `json:"author_id" gorm:"type:uuid;not null;index"`
	Author      *Author       `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (p *Project) TableName() string {
	return "projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = ProjectStatusPending
	}
	return nil
}

// ProjectSummary is the slice of a project embedded in application listings.
type ProjectSummary struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category *string `json:"category"`
}

func (p *ProjectSummary) TableName() string {
	return "projects"
}

// Application links an applicant to a project. The pair is unique.
type Application struct {
	ID          string            `json:"id" gorm:"type:uuid;primaryKey"`
	ApplicantID string            `json:"applicant_id" gorm:"type:uuid;not null;uniqueIndex:idx_applicant_project"`
	ProjectID   string            `json:"project_id" gorm:"type:uuid;not null;uniqueIndex:idx_applicant_project"`
	Status      ApplicationStatus `json:"status" gorm:"type:varchar(16);not null"`
	Applicant   *Author           `json:"applicant,omitempty" gorm:"foreignKey:ApplicantID"`
	Project     *ProjectSummary   `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (a *Application) TableName() string {
	return "applications"
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = ApplicationStatusPending
	}
	return nil
}
