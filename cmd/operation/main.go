package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cofinco/backoffice/internal/app"
	envconfig "github.com/cofinco/backoffice/internal/common/config"
	"github.com/cofinco/backoffice/internal/common/logging"
	"github.com/cofinco/backoffice/internal/domain/document"
)

// Example: DOCUMENT_STORE=dynamodb DYNAMODB_TABLE_NAME=backoffice-dev go run ./cmd/operation check-ledger
func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	os.Exit(run(os.Args[1]))
}

func run(command string) int {
	_ = godotenv.Load()
	cfg, err := envconfig.LoadFromEnv()
	if err != nil {
		log.Printf("Failed to load Env config: %v", err)
		return 1
	}
	logger := logging.Must(cfg.Environment)
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialise backoffice", zap.Error(err))
		return 1
	}
	defer a.Close()

	switch command {
	case "seed":
		return seed(ctx, a)
	case "check-ledger":
		return checkLedger(ctx, a)
	default:
		usage()
		return 2
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: operation <seed|check-ledger>")
}

// seed loads the document, which writes the seed when none exists yet
func seed(ctx context.Context, a *app.App) int {
	err := a.Session.View(ctx, func(doc *document.Document) error {
		fmt.Printf("document version %s, %d users, last update %s\n",
			doc.Meta.Version, len(doc.Users), doc.Meta.LastUpdate.Format(time.RFC3339))
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed document: %v\n", err)
		return 1
	}
	return 0
}

// checkLedger prints the trial balance and fails when it does not close
func checkLedger(ctx context.Context, a *app.App) int {
	tb, err := a.Services.Ledger.TrialBalance(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to compute trial balance: %v\n", err)
		return 1
	}

	fmt.Printf("%-12s %14s %14s %14s\n", "compte", "debit", "credit", "solde")
	for _, row := range tb {
		fmt.Printf("%-12s %14s %14s %14s\n", row.Account, row.Debit.StringFixed(2), row.Credit.StringFixed(2), row.Balance.StringFixed(2))
	}

	if !tb.Closes() {
		fmt.Fprintf(os.Stderr, "trial balance does not close: total %s\n", tb.Total().StringFixed(2))
		return 1
	}
	fmt.Println("trial balance closes")
	return 0
}
