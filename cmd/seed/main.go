package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/devfolio-api/config"
	"github.com/oksasatya/devfolio-api/internal/application"
	"github.com/oksasatya/devfolio-api/internal/container"
	"github.com/oksasatya/devfolio-api/pkg/apperror"
	"github.com/oksasatya/devfolio-api/pkg/helpers"
)

const (
	demoUser     = "demo"
	demoEmail    = "demo@devfolio.local"
	demoPassword = "password123"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	if cfg.StoreDriver == "memory" {
		log.Fatal("seed needs STORE_DRIVER=postgres; the memory store does not outlive this process")
	}

	ctx := context.Background()
	stores, err := container.OpenStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	c := container.New(cfg, logger, stores, nil, nil)
	defer c.Close()

	_, err = c.Auth.Signup(ctx, application.SignupInput{Username: demoUser, Email: demoEmail, Password: demoPassword})
	switch {
	case apperror.Is(err, apperror.DuplicateEmail):
		fmt.Printf("demo user already exists: email=%s\n", demoEmail)
		return
	case err != nil:
		log.Fatalf("seed user: %v", err)
	}

	u, err := c.Auth.Authenticate(ctx, demoEmail, demoPassword)
	if err != nil {
		log.Fatalf("reload demo user: %v", err)
	}

	desc := "Personal portfolio API with JWT auth and per-user projects."
	status := "In Progress"
	repoURL := "https://github.com/oksasatya/devfolio-api"
	start := "2025-01-06"
	p, err := c.ProjectsSvc.Create(ctx, u.ID, application.ProjectInput{
		Name:        strPtr("Devfolio API"),
		Tech:        strPtr("Go, Gin, PostgreSQL"),
		Description: &desc,
		Status:      &status,
		URL:         &repoURL,
		StartDate:   &start,
	})
	if err != nil {
		log.Fatalf("seed project: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", u.ID, demoEmail, demoPassword)
	fmt.Printf("seeded project: id=%s name=%s\n", p.ID, p.Name)
}

func strPtr(s string) *string { return &s }
