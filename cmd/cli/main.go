package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Geek-Mradul/mintern/internal/auth"
	"github.com/Geek-Mradul/mintern/internal/config"
	"github.com/Geek-Mradul/mintern/internal/database"
	"github.com/Geek-Mradul/mintern/internal/platform/project"
	"github.com/Geek-Mradul/mintern/internal/platform/user"
	"github.com/Geek-Mradul/mintern/internal/seed"
)

var approveSeed bool

func connect() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return database.Connect(cfg)
}

var rootCmd = &cobra.Command{
	Use:          "mintern",
	Short:        "Mintern CLI",
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connect()
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}

		fmt.Println("Schema is up to date")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo users and projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connect()
		if err != nil {
			return err
		}

		created, err := seed.Run(context.Background(), user.NewService(db), project.NewService(db), approveSeed)
		if err != nil {
			return err
		}

		fmt.Println("Users created :", created)
		fmt.Println("Password      :", seed.DefaultPassword)
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

func setRole(email string, role auth.Role) error {
	db, err := connect()
	if err != nil {
		return err
	}

	u, err := user.NewService(db).SetRole(context.Background(), email, role)
	if err != nil {
		return err
	}

	fmt.Println("User ID :", u.ID)
	fmt.Println("Email   :", u.Email)
	fmt.Println("Role    :", u.Role)
	fmt.Println("\nExisting tokens keep their old role until they expire.")
	return nil
}

var userPromoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the ADMIN role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setRole(args[0], auth.RoleAdmin)
	},
}

var userRoleCmd = &cobra.Command{
	Use:   "role <email> <ORDINARY|INTERNAL|ADMIN>",
	Short: "Set a user's role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role := auth.Role(strings.ToUpper(args[1]))
		if !role.Valid() {
			return fmt.Errorf("unknown role %q", args[1])
		}
		return setRole(args[0], role)
	},
}

var userShowCmd = &cobra.Command{
	Use:   "show <email>",
	Short: "Show a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connect()
		if err != nil {
			return err
		}

		u, err := user.NewService(db).GetUserByEmail(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Println("User ID  :", u.ID)
		fmt.Println("Email    :", u.Email)
		fmt.Println("Name     :", u.Name)
		fmt.Println("Role     :", u.Role)
		fmt.Println("Password :", u.HasPassword())
		return nil
	},
}

func main() {
	seedCmd.Flags().BoolVar(&approveSeed, "approve", true, "publish seeded projects immediately")

	userCmd.AddCommand(userPromoteCmd)
	userCmd.AddCommand(userRoleCmd)
	userCmd.AddCommand(userShowCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(userCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
