// Command adduser registers a user from the terminal. It talks to the
// database directly, so an operator can bootstrap the first account before
// the HTTP surface is exposed.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/dkarklis/gatehouse/internal/common"
	"github.com/dkarklis/gatehouse/internal/config"
	"github.com/dkarklis/gatehouse/internal/password"
	"github.com/dkarklis/gatehouse/internal/repositories/repomanager"
	"github.com/dkarklis/gatehouse/internal/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	rm, err := repomanager.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer func() { _ = rm.Close() }()

	if err := rm.RunMigrations(ctx); err != nil {
		return err
	}

	creds, err := services.NewCredentialService(rm, password.NewHasher(password.DefaultParams()))
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	name, err := promptLine(reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := promptLine(reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	pw, err := promptPassword("Enter password: ", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	confirm, err := promptPassword("Repeat password: ", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	user, err := creds.Register(ctx, services.RegistrationInput{
		Name:                 name,
		Email:                email,
		Password:             string(pw),
		PasswordConfirmation: string(confirm),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created user %s (%s)\n", user.ID, user.Email)
	return nil
}
