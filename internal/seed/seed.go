package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/lib/pq"

	"github.com/Geek-Mradul/mintern/internal/auth"
	"github.com/Geek-Mradul/mintern/internal/database"
	"github.com/Geek-Mradul/mintern/internal/platform/project"
	"github.com/Geek-Mradul/mintern/internal/platform/user"
	"github.com/Geek-Mradul/mintern/pkg/utils"
)

const DefaultPassword = "password123"

type UserStore interface {
	Create(ctx context.Context, u *database.User) error
	GetUserByEmail(ctx context.Context, email string) (*database.User, error)
}

type ProjectStore interface {
	Create(ctx context.Context, authorID string, input project.NewProject) (*database.Project, error)
	SetStatus(ctx context.Context, id string, status database.ProjectStatus) (*database.Project, error)
}

type seedUser struct {
	email  string
	name   string
	skills []string
	posts  []project.NewProject
}

var fixtures = []seedUser{
	{
		email:  "alice@bits.com",
		name:   "Alice",
		skills: []string{"React", "Node.js"},
		posts: []project.NewProject{
			{
				Title:       "Build a Note-Taking App",
				Description: "Need help building a simple React note-taking app.",
				Category:    utils.StringOrNil("Web Development"),
			},
			{
				Title:       "Thermodynamics Problem Set",
				Description: "Looking for a partner to review 2nd-year thermo problems.",
				Category:    utils.StringOrNil("Academics"),
			},
		},
	},
	{
		email:  "bob@bits.com",
		name:   "Bob",
		skills: []string{"Python", "Data Analysis"},
		posts: []project.NewProject{
			{
				Title:       "Drone Club Logo Design",
				Description: "Need a cool logo for the new drone racing club.",
				Category:    utils.StringOrNil("Design"),
			},
		},
	},
}

// Run inserts the demo users and their projects. Users that already exist are
// left alone together with their projects, so running it twice is harmless.
// When approve is set the projects are published right away.
func Run(ctx context.Context, users UserStore, projects ProjectStore, approve bool) (int, error) {
	created := 0

	for _, fixture := range fixtures {
		_, err := users.GetUserByEmail(ctx, fixture.email)
		if err == nil {
			log.Infof("seed: %s already exists, skipping", fixture.email)
			continue
		}
		if !errors.Is(err, user.ErrUserNotFound) {
			return created, fmt.Errorf("seed: lookup %s: %w", fixture.email, err)
		}

		hash, err := auth.HashPassword(DefaultPassword)
		if err != nil {
			return created, err
		}

		u := &database.User{
			Email:        fixture.email,
			Name:         fixture.name,
			PasswordHash: &hash,
			Role:         auth.RoleOrdinary,
			Skills:       pq.StringArray(fixture.skills),
		}
		if err := users.Create(ctx, u); err != nil {
			return created, fmt.Errorf("seed: create %s: %w", fixture.email, err)
		}
		created++

		for _, post := range fixture.posts {
			p, err := projects.Create(ctx, u.ID, post)
			if err != nil {
				return created, fmt.Errorf("seed: create project %q: %w", post.Title, err)
			}
			if approve {
				if _, err := projects.SetStatus(ctx, p.ID, database.ProjectStatusApproved); err != nil {
					return created, fmt.Errorf("seed: approve project %q: %w", post.Title, err)
				}
			}
		}
	}

	return created, nil
}
