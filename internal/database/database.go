package database

import (
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Geek-Mradul/mintern/internal/config"
)

func Connect(c *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(c.DatabaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Debug("GORM connected to database")

	return db, nil
}

// Migrate creates or updates the tables behind the models. Only the cli calls
// it; the server expects the schema to exist.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Project{}, &Application{})
}
