// Package main provides admin account utilities for the blog.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"ajayblog/internal/config"
	"ajayblog/internal/database"
	"ajayblog/internal/models"
	"ajayblog/internal/repository"
	"ajayblog/internal/service"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	svc := service.NewAuthService(repository.NewAdminRepository(db), nil)

	switch os.Args[1] {
	case "create":
		if len(os.Args) < 4 {
			fmt.Println("Usage: go run ./cmd/admin create <username> <password> [email]")
			os.Exit(1)
		}
		req := models.CreateAdminRequest{Username: os.Args[2], Password: os.Args[3]}
		if len(os.Args) > 4 {
			req.Email = os.Args[4]
		}
		createAdmin(ctx, svc, req)

	case "list":
		listAdmins(ctx, svc)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin create <username> <password> [email]  - Create an admin account")
	fmt.Println("  go run ./cmd/admin list                                  - List all admins")
}

func createAdmin(ctx context.Context, svc *service.AuthService, req models.CreateAdminRequest) {
	admin, err := svc.CreateAdmin(ctx, req)
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
	fmt.Printf("Created admin %s (ID: %s)\n", admin.Username, admin.ID)
}

func listAdmins(ctx context.Context, svc *service.AuthService) {
	admins, err := svc.ListAdmins(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found")
		return
	}

	fmt.Println("Current admins:")
	fmt.Println("-------------------------------------")
	for _, admin := range admins {
		email := "-"
		if admin.Email != nil {
			email = *admin.Email
		}
		fmt.Printf("ID: %s | Username: %s | Email: %s | Created: %s\n",
			admin.ID, admin.Username, email, admin.CreatedAt.Format("2006-01-02"))
	}
	fmt.Println("-------------------------------------")
}
