package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/akilliyazili/yazili-backend/internal/config"
	"github.com/akilliyazili/yazili-backend/internal/database"
	"github.com/akilliyazili/yazili-backend/internal/logger"
	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/akilliyazili/yazili-backend/internal/repository"
	"github.com/akilliyazili/yazili-backend/internal/service"
	"golang.org/x/term"
)

// create-admin is the only way to obtain the admin role; registration
// accepts teachers and students only.
func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, "create-admin")

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	users := repository.NewUserRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	name := prompt(reader, "Enter Name: ")
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	email := prompt(reader, "Enter Email: ")
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	admin := &model.User{
		Name:  name,
		Email: email,
		Role:  model.RoleAdmin,
	}

	if cfg.AuthProvider == config.AuthProviderExternal {
		// The identity provider owns the credentials; link by subject.
		admin.ExternalID = prompt(reader, "Enter identity provider subject: ")
		if admin.ExternalID == "" {
			fmt.Println("Error: Subject is required")
			return
		}
	} else {
		fmt.Print("Enter Password: ")
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println() // Newline after password input
		if err != nil {
			fmt.Println("Error reading password")
			return
		}
		password := string(bytePassword)
		if len(password) < 6 {
			fmt.Println("Error: Password must be at least 6 characters")
			return
		}

		admin.PasswordHash, err = service.HashPassword(password, cfg.BcryptCost)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to hash password")
		}
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			fmt.Printf("Error: a user with email %s already exists\n", email)
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %s\n", admin.Name, admin.Email, admin.ID)
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}
