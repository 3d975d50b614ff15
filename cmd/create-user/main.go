package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/learnage/portal/internal/config"
	"github.com/learnage/portal/internal/database"
	"github.com/learnage/portal/internal/logger"
	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/repository"
	"github.com/learnage/portal/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	// Hashing needs no Redis.
	userService := service.NewUserService(
		repository.NewUserRepository(pool),
		service.NewAuthService(cfg, nil),
	)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Print(label)
		v, _ := reader.ReadString('\n')
		return strings.TrimSpace(v)
	}

	fmt.Println("=== Create Portal Account ===")

	req := &model.RegisterRequest{}

	req.Name = prompt("Enter Name: ")
	if req.Name == "" {
		fmt.Println("Error: Name is required")
		os.Exit(1)
	}

	req.Email = prompt("Enter Email: ")
	if req.Email == "" {
		fmt.Println("Error: Email is required")
		os.Exit(1)
	}

	role, ok := model.ParseRole(strings.ToLower(prompt("Enter Role (student/teacher/parent): ")))
	if !ok {
		fmt.Println("Error: Role must be student, teacher or parent")
		os.Exit(1)
	}
	req.Role = role

	if role != model.RoleParent {
		req.ClassID = prompt("Enter Class ID: ")
		if req.ClassID == "" {
			fmt.Println("Error: Class ID is required for students and teachers")
			os.Exit(1)
		}
	}
	if role == model.RoleStudent {
		req.ParentID = prompt("Enter Parent UID (optional): ")
	}

	if cfg.IdentityProvider != config.IdentityProviderLocal {
		req.UID = prompt("Enter " + cfg.IdentityProvider + " User ID: ")
		if req.UID == "" {
			fmt.Println("Error: External accounts need the provider's user id")
			os.Exit(1)
		}
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		os.Exit(1)
	}
	req.Password = string(bytePassword)
	if len(req.Password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		os.Exit(1)
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	u, err := userService.Register(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create account")
	}

	fmt.Printf("\nSuccess! %s '%s' (%s) created with UID: %s\n", u.Role, u.Name, u.Email, u.UID)
}
