package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"blog-platform/internal/config"
	"blog-platform/internal/domain"
	"blog-platform/internal/repository"
	"blog-platform/internal/repository/sqlite"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

var rootCmd = &cobra.Command{
	Use:   "createadmin",
	Short: "Create an admin account directly in the database",
	Long: `Create an admin account directly in the database.

The HTTP API only registers regular users; the first admin is bootstrapped
with this tool.`,
	Args: cobra.NoArgs,
	RunE: runCreateAdmin,
}

func init() {
	rootCmd.Flags().StringVar(&adminName, "name", "", "admin display name")
	rootCmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
	rootCmd.Flags().StringVar(&adminPassword, "password", "", "admin password")
	_ = rootCmd.MarkFlagRequired("name")
	_ = rootCmd.MarkFlagRequired("email")
	_ = rootCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	users := sqlite.NewUserRepository(db)
	if err := users.Init(ctx); err != nil {
		return fmt.Errorf("init user repository: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := &domain.User{
		Name:         adminName,
		Email:        adminEmail,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}

	if _, err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return fmt.Errorf("email %s is already registered", adminEmail)
		}
		return fmt.Errorf("create admin: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"user_id": admin.ID,
		"email":   admin.Email,
	}).Info("admin account created")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
