// Path: cmd/bankctl/main.go

// Command bankctl performs administrative tasks against the bank database.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"bank-backend/internal/config"
	"bank-backend/internal/models"
	"bank-backend/internal/repository"
	"bank-backend/internal/repository/postgres"
	"bank-backend/internal/services"
	"bank-backend/pkg/database"

	"github.com/fatih/color"
	"golang.org/x/term"
	"gorm.io/gorm/logger"
)

const usage = `Usage: bankctl <command> [arguments]
Commands:
  create-admin <username> <email>   register an ADMIN user and print its access token
  revoke-user <username>            log out every active session of a user`

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string, in *os.File, out io.Writer) error {
	if len(args) < 1 {
		fmt.Fprintln(out, usage)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := cfg.NewLogger()

	db, err := database.InitDB(cfg.DatabaseURL, logger.Silent)
	if err != nil {
		return err
	}
	defer database.Close(db) //nolint:errcheck

	store := postgres.NewStore(db)
	ctx := context.Background()

	switch args[0] {
	case "create-admin":
		if len(args) < 3 {
			return fmt.Errorf("usage: create-admin <username> <email>")
		}
		svc, err := services.NewService(
			store,
			services.NewJWTService(cfg.SigningKey, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration),
			services.NewPasswordEncoder(cfg.BcryptCost),
			cfg.SigningKey,
			log,
		)
		if err != nil {
			return err
		}
		req, err := promptAdmin(in, out, args[1], args[2])
		if err != nil {
			return err
		}
		resp, err := svc.Auth.Register(ctx, req)
		if err != nil {
			return err
		}
		color.New(color.FgGreen, color.Bold).Fprintln(out, resp.Message)
		fmt.Fprintf(out, "access token: %s\n", color.CyanString(resp.AccessToken))
	case "revoke-user":
		if len(args) < 2 {
			return fmt.Errorf("usage: revoke-user <username>")
		}
		n, err := revokeUser(ctx, store, args[1])
		if err != nil {
			return err
		}
		color.New(color.FgYellow).Fprintf(out, "revoked %d active token(s) of %s\n", n, args[1])
	default:
		fmt.Fprintln(out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func revokeUser(ctx context.Context, store repository.Store, username string) (int64, error) {
	var revoked int64
	err := store.WithinTransaction(ctx, func(tx repository.Store) error {
		user, err := tx.Users().LockByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("user %q: %w", username, err)
		}
		revoked, err = tx.Tokens().RevokeAllForUser(ctx, user.ID)
		return err
	})
	return revoked, err
}

func promptAdmin(in *os.File, out io.Writer, username, email string) (*models.UserRequest, error) {
	reader := bufio.NewReader(in)
	ask := func(label string) (string, error) {
		fmt.Fprintf(out, "%s: ", label)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	firstName, err := ask("First name")
	if err != nil {
		return nil, err
	}
	lastName, err := ask("Last name")
	if err != nil {
		return nil, err
	}
	phone, err := ask("Phone number")
	if err != nil {
		return nil, err
	}

	fmt.Fprint(out, "Password: ")
	password, err := term.ReadPassword(int(in.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return &models.UserRequest{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		PhoneNumber: phone,
		Username:    username,
		Password:    string(password),
		Role:        models.RoleAdmin,
	}, nil
}
