package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/internal/auth/apikey"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Redis-Typeahead-Service/pkg/postgres"
)

// keyadmin manages API keys for the typeahead service.
//
// Usage:
//
//	keyadmin create --name "my-app" [--expires-in 720h]
//	keyadmin revoke --key <raw-key>
//	keyadmin list
func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	validator := apikey.NewValidator(db)
	ctx := context.Background()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "create":
		cmdCreate(ctx, validator, args[1:])
	case "revoke":
		cmdRevoke(ctx, validator, args[1:])
	case "list":
		cmdList(ctx, validator)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func cmdCreate(ctx context.Context, v *apikey.Validator, args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	name := fs.String("name", "", "name for the api key")
	expiresIn := fs.String("expires-in", "", "expiry duration, e.g. 720h (optional)")
	fs.Parse(args)

	if *name == "" {
		fmt.Fprintln(os.Stderr, "error: --name is required")
		os.Exit(1)
	}

	var expiresAt *time.Time
	if *expiresIn != "" {
		d, err := time.ParseDuration(*expiresIn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --expires-in: %v\n", err)
			os.Exit(1)
		}
		t := time.Now().Add(d)
		expiresAt = &t
	}

	key, err := v.CreateKey(ctx, *name, expiresAt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create key: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("API key created. Store it now, it cannot be shown again:")
	fmt.Println(key)
}

func cmdRevoke(ctx context.Context, v *apikey.Validator, args []string) {
	fs := flag.NewFlagSet("revoke", flag.ExitOnError)
	key := fs.String("key", "", "raw api key to revoke")
	fs.Parse(args)

	if *key == "" {
		fmt.Fprintln(os.Stderr, "error: --key is required")
		os.Exit(1)
	}
	if err := v.RevokeKey(ctx, *key); err != nil {
		fmt.Fprintf(os.Stderr, "failed to revoke key: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("API key revoked.")
}

func cmdList(ctx context.Context, v *apikey.Validator) {
	keys, err := v.ListKeys(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list keys: %v\n", err)
		os.Exit(1)
	}
	if len(keys) == 0 {
		fmt.Println("No active API keys.")
		return
	}
	for _, k := range keys {
		expiry := "never"
		if k.ExpiresAt != nil {
			expiry = k.ExpiresAt.Format(time.RFC3339)
		}
		fmt.Printf("%s  %-20s  created=%s  expires=%s\n",
			k.ID, k.Name, k.CreatedAt.Format(time.RFC3339), expiry)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: keyadmin [--config path] <command>

commands:
  create --name <name> [--expires-in <duration>]
  revoke --key <raw-key>
  list`)
}
