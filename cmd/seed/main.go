package main

import (
	"context"
	"flag"
	"os"

	"ai-studypal-be/internal/config"
	"ai-studypal-be/internal/dto"
	"ai-studypal-be/internal/repository/implementation"
	"ai-studypal-be/internal/repository/memory"
	"ai-studypal-be/internal/service"

	"github.com/fatih/color"
)

// Seeds a user into the credential file for local development.
//
//	go run ./cmd/seed -name "Alice" -username alice -password pw123
func main() {
	name := flag.String("name", "Demo User", "display name")
	username := flag.String("username", "demo", "login username")
	password := flag.String("password", "demo123", "login password")
	flag.Parse()

	cfg := config.Load()

	userRepo := implementation.NewUserFileRepository(cfg.Store.CredentialFile)
	authService := service.NewAuthService(userRepo, memory.NewSessionRepository(0), cfg.Auth.JwtSecret, 0)

	res, err := authService.Register(context.Background(), &dto.RegisterRequest{
		Name:     *name,
		Username: *username,
		Password: *password,
	})
	if err != nil {
		color.Red("✗ seed failed: %v", err)
		os.Exit(1)
	}

	color.Green("✓ user %q seeded (id %s) into %s", res.Username, res.Id, cfg.Store.CredentialFile)
}
