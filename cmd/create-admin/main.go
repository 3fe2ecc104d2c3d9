// Command create-admin registers a shop administrator in the configured database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"acai-store/config"
	"acai-store/database"
	"acai-store/models"
	"acai-store/store"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type options struct {
	name     string
	login    string
	password string
}

func main() {
	cfg := config.LoadConfig()
	if err := run(context.Background(), os.Args[1:], cfg); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("create-admin: %v", err)
	}
}

func run(ctx context.Context, args []string, cfg *config.Config) error {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, cfg.DBDriver); err != nil {
		db.Close()
		return err
	}
	st := store.New(db)
	defer st.Close()

	admin := &models.Admin{Name: opts.name, Login: opts.login, PasswordHash: string(hash)}
	if err := st.CreateAdmin(ctx, admin); err != nil {
		return err
	}
	log.Printf("Admin %s created with id %s", admin.Login, admin.ID)
	return nil
}

func parseFlags(args []string, output io.Writer) (options, error) {
	set := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	set.SetOutput(output)

	var opts options
	set.StringVar(&opts.name, "name", "", "Display name of the administrator")
	set.StringVar(&opts.login, "login", "", "Login used on the admin panel")
	set.StringVar(&opts.password, "password", os.Getenv("ADMIN_PASSWORD"), "Password (defaults to $ADMIN_PASSWORD)")
	if err := set.Parse(args); err != nil {
		return options{}, err
	}

	opts.name = strings.TrimSpace(opts.name)
	opts.login = strings.TrimSpace(opts.login)
	switch {
	case opts.login == "":
		return options{}, errors.New("-login is required")
	case len(opts.password) < minPasswordLength:
		return options{}, fmt.Errorf("password must have at least %d characters", minPasswordLength)
	}
	if opts.name == "" {
		opts.name = opts.login
	}
	return opts, nil
}
