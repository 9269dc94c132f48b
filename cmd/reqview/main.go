// reqview prints the pending request ledgers of a stored profile.
// It opens the database read-only with the lock guard bypassed, so it can
// run while bridged holds the directory.
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"

	"toxbridge/repositories"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" required:"true"`
	ShortIDLength  int    `envconfig:"SHORT_ID_LENGTH" default:"8"`
}

func main() {
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	repo := repositories.NewLedgerRepository(db, logger)

	requests, err := repo.LoadFriendRequests()
	if err != nil {
		log.Fatalf("Failed to load friend requests: %v", err)
	}
	fmt.Printf("Pending friend requests: %d\n", len(requests))
	if len(requests) > 0 {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Ref", "From", "Message", "Received"})
		for _, e := range requests {
			table.Append([]string{
				fmt.Sprintf("%d", e.Ref),
				e.From.ShortHex(config.ShortIDLength),
				e.Payload.Message,
				e.ReceivedAt.Format("2006-01-02 15:04:05"),
			})
		}
		table.Render()
	}

	invites, err := repo.LoadGroupInvites()
	if err != nil {
		log.Fatalf("Failed to load group invites: %v", err)
	}
	fmt.Printf("Pending group invites: %d\n", len(invites))
	if len(invites) > 0 {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Ref", "From", "Kind", "Received"})
		for _, e := range invites {
			table.Append([]string{
				fmt.Sprintf("%d", e.Ref),
				e.From.ShortHex(config.ShortIDLength),
				e.Payload.Kind.Label(),
				e.ReceivedAt.Format("2006-01-02 15:04:05"),
			})
		}
		table.Render()
	}
}
