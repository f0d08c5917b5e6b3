package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	dbfs "github.com/trackops/trackd/db"
	"github.com/trackops/trackd/internal/auth"
	"github.com/trackops/trackd/internal/config"
	"github.com/trackops/trackd/internal/db"
	"github.com/trackops/trackd/internal/repository/sqlite"
	"github.com/trackops/trackd/pkg/models"
)

func main() {
	adminEmail := flag.String("admin-email", "", "Create an admin account with this email")
	adminName := flag.String("admin-name", "Admin", "Name for the admin account")
	adminPassword := flag.String("admin-password", "", "Password for the admin account")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	// run migrations and seed using internal/db.Migrate
	if err := db.Migrate(ctx, database, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	if *adminEmail != "" {
		if *adminPassword == "" {
			fmt.Fprintln(os.Stderr, "-admin-password is required with -admin-email")
			os.Exit(1)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*adminPassword), bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Hash error: %v\n", err)
			os.Exit(1)
		}
		repo := sqlite.New(database, nil)
		id, err := repo.CreateUser(ctx, &models.User{
			Name:         *adminName,
			Email:        *adminEmail,
			Tenure:       1,
			RoleID:       int64(auth.RoleAdmin),
			PasswordHash: string(hash),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Admin account error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Admin account created (id %d).\n", id)
	}

	fmt.Println("Database initialized successfully.")
}
