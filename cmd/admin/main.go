// Command admin bootstraps the portal with its first staff account. It is
// meant to be run once against a fresh database, before the server is
// exposed, since account creation over the API requires an existing session.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/saireecmpo/portal/internal/logging"
	"github.com/saireecmpo/portal/internal/server/config"
	"github.com/saireecmpo/portal/internal/server/mailer"
	"github.com/saireecmpo/portal/internal/server/repositories/repomanager"
	"github.com/saireecmpo/portal/internal/server/services"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Printf("%s: ", label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fmt.Printf("%s: ", label)
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func main() {

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	ctx := context.Background()
	cfg := config.LoadConfig()

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	mail := mailer.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	accounts := services.NewAccountService(db, rm, mail, logger, cfg)

	reader := bufio.NewReader(os.Stdin)

	email, err := prompt(reader, "Email")
	if err != nil {
		log.Fatalf("input error: %v", err)
	}
	firstName, err := prompt(reader, "First name")
	if err != nil {
		log.Fatalf("input error: %v", err)
	}
	lastName, err := prompt(reader, "Last name")
	if err != nil {
		log.Fatalf("input error: %v", err)
	}

	password, err := promptPassword("Password")
	if err != nil {
		log.Fatalf("input error: %v", err)
	}
	confirm, err := promptPassword("Confirm password")
	if err != nil {
		log.Fatalf("input error: %v", err)
	}
	if password != confirm {
		log.Fatal("passwords do not match")
	}

	account, err := accounts.Register(ctx, email, password, firstName, lastName)
	if err != nil {
		log.Fatalf("error creating account: %v", err)
	}

	fmt.Printf("Created account %s (%s)\n", account.Email, account.ID)
}
