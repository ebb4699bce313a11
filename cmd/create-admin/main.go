package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/attendly/attendance-api/internal/models"
	"github.com/attendly/attendance-api/internal/repository"
	"github.com/attendly/attendance-api/pkg/config"
	"github.com/attendly/attendance-api/pkg/database"
)

// Provisions an administrator account. Passwords are read from the terminal
// without echo; the --username and --password flags exist for scripted setups.
func main() {
	username := flag.String("username", "", "admin username (prompted when empty)")
	password := flag.String("password", "", "admin password (prompted when empty)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	reader := bufio.NewReader(os.Stdin)
	name := strings.TrimSpace(*username)
	if name == "" {
		fmt.Print("Username: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Fatalf("failed to read username: %v", err)
		}
		name = strings.TrimSpace(line)
	}
	if name == "" {
		log.Fatal("username must not be empty")
	}

	pass := *password
	if pass == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			log.Fatalf("failed to read password: %v", err)
		}
		pass = string(raw)
	}
	if len(pass) < 6 {
		log.Fatal("password must be at least 6 characters")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admins := repository.NewAdminRepository(db)
	if _, err := admins.FindByUsername(ctx, name); err == nil {
		fmt.Printf("admin %q already exists\n", name)
		os.Exit(1)
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Fatalf("failed to check existing admin: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	admin := &models.Admin{Username: name, PasswordHash: string(hash)}
	if err := admins.Create(ctx, admin); err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}

	fmt.Printf("admin %q created (id %s)\n", name, admin.ID)
}
