package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voxgate/voxgate/internal/api"
	"github.com/voxgate/voxgate/internal/config"
	"github.com/voxgate/voxgate/internal/log"
	"github.com/voxgate/voxgate/internal/store"
	"github.com/voxgate/voxgate/internal/webhook"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "serve":
		os.Exit(runServe(args))
	case "sign":
		os.Exit(runSign(args))
	case "secret":
		os.Exit(runSecret())
	case "version":
		fmt.Printf("voxgate version %s\n", version)
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`voxgate - Signed voice-conversation webhook intake service

Usage:
  voxgate <command> [flags]

Commands:
  serve     Run the intake and read API server in foreground
  sign      Compute a signature header for a payload (testing aid)
  secret    Generate a random webhook secret
  version   Show version information
  help      Show this help message

Serve flags:
  --config <path>   Configuration file (default: ./config.yaml)

Sign flags:
  --secret <value>  HMAC secret (required)
  --body <path>     Payload file; reads stdin if omitted
  --ts <seconds>    Signed timestamp; defaults to now
`)
}

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "./config.yaml", "configuration file path")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel)
	logger := log.WithComponent("server")

	if cfg.Webhook.Secret == "" {
		logger.Warn("webhook secret is not configured; intake requests will be rejected with 500")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Storage.Backend, cfg.Storage.DataDir, cfg.Storage.SQLitePath)
	if err != nil {
		logger.Error("failed to open payload store", "backend", cfg.Storage.Backend, "error", err)
		return 1
	}
	defer func() { _ = st.Close() }()

	intake := webhook.NewHandler(webhook.Config{
		Secret:      cfg.Webhook.Secret,
		MaxBodySize: cfg.Webhook.MaxBodyBytes,
		MaxSkew:     cfg.Webhook.Skew,
		AudioDir:    cfg.Storage.DataDir,
	}, st, log.WithComponent("webhook"))

	server := api.New(api.Config{
		Listen:         cfg.Listen,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		StorageBackend: cfg.Storage.Backend,
	}, st, intake, logger)

	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server failed", "error", err)
		return 1
	}
	return 0
}

func runSign(args []string) int {
	fs := flag.NewFlagSet("sign", flag.ExitOnError)
	secret := fs.String("secret", "", "HMAC secret")
	bodyFile := fs.String("body", "", "payload file (stdin if omitted)")
	ts := fs.Int64("ts", 0, "signed timestamp in epoch seconds (now if omitted)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "Usage: voxgate sign --secret <value> [--body <file>] [--ts <seconds>]")
		return 1
	}

	var body []byte
	var err error
	if *bodyFile != "" {
		body, err = os.ReadFile(*bodyFile)
	} else {
		body, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read body: %v\n", err)
		return 1
	}

	when := time.Now()
	if *ts != 0 {
		when = time.Unix(*ts, 0)
	}

	fmt.Printf("%s: %s\n", webhook.SignatureHeader, webhook.Sign(*secret, when, body))
	return 0
}

func runSecret() int {
	secret, err := generateSecret()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate secret: %v\n", err)
		return 1
	}
	fmt.Println(secret)
	return 0
}

// generateSecret returns a cryptographically random 32-byte hex string.
func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
