package user

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Geek-Mradul/mintern/internal/auth"
	"github.com/Geek-Mradul/mintern/internal/database"
	"github.com/Geek-Mradul/mintern/pkg/utils"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already in use")
)

// Profile holds the fields a user may change about themselves. A nil field is
// left as stored. A blank Bio clears it.
type Profile struct {
	Bio    *string
	Skills []string
}

type UserService struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Create(ctx context.Context, user *database.User) error {
	result := s.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return result.Error
	}
	return nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID string) (*database.User, error) {
	var user database.User

	result := s.db.WithContext(ctx).First(&user, "id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*database.User, error) {
	var user database.User

	result := s.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// UpsertFederated creates or refreshes the account behind a federated login in
// a single statement keyed by the unique email. An existing ADMIN keeps its
// role, everyone else becomes INTERNAL. The password hash is never touched.
func (s *UserService) UpsertFederated(ctx context.Context, email, name string) (*database.User, error) {
	user := database.User{
		Email: email,
		Name:  name,
		Role:  auth.RoleInternal,
	}

	result := s.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"name":       name,
				"role":       gorm.Expr("CASE WHEN users.role = ? THEN users.role ELSE ? END", auth.RoleAdmin, auth.RoleInternal),
				"updated_at": time.Now(),
			}),
		},
		clause.Returning{},
	).Create(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, profile Profile) (*database.User, error) {
	updates := make(map[string]interface{})
	if profile.Bio != nil {
		updates["bio"] = utils.StringOrNil(*profile.Bio)
	}
	if profile.Skills != nil {
		updates["skills"] = pq.StringArray(profile.Skills)
	}
	if len(updates) == 0 {
		return s.GetUserByID(ctx, userID)
	}

	result := s.db.WithContext(ctx).Model(&database.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	return s.GetUserByID(ctx, userID)
}

// SetRole changes a user's role. Tokens already issued keep the old role
// until they expire.
func (s *UserService) SetRole(ctx context.Context, email string, role auth.Role) (*database.User, error) {
	result := s.db.WithContext(ctx).Model(&database.User{}).Where("email = ?", email).Update("role", role)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return s.GetUserByEmail(ctx, email)
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&database.User{}).Count(&count)
	return count, result.Error
}
