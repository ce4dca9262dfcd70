package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shihanqu/discord-quote-bot/internal/auth"
	"github.com/shihanqu/discord-quote-bot/internal/snowflake"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "migrate":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: quotebot-cli migrate")
			fmt.Println()
			fmt.Println("Run database migrations from the migrations/ directory.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
			return
		}
		os.Exit(runMigrate())
	case "seed":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: quotebot-cli seed")
			fmt.Println()
			fmt.Println("Seed the database with a few demo quotes.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
			return
		}
		os.Exit(runSeed())
	case "token":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: quotebot-cli token <user-id> [--admin]")
			fmt.Println()
			fmt.Println("Generate an API access token acting as the given user.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  JWT_SECRET  token signing secret (required)")
			return
		}
		os.Exit(runToken(os.Args[2:]))
	case "health":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: quotebot-cli health")
			fmt.Println()
			fmt.Println("Check if the quotebot API is running.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  SERVER_URL  API base URL (default: http://localhost:8080)")
			return
		}
		os.Exit(runHealth())
	case "version":
		fmt.Printf("quotebot-cli %s\n", version)
	case "--help", "-h", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: quotebot-cli <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate  Run database migrations")
	fmt.Println("  seed     Seed a few demo quotes")
	fmt.Println("  token    Generate an API access token")
	fmt.Println("  health   Check if the API is running")
	fmt.Println("  version  Print version info")
	fmt.Println()
	fmt.Println("Run 'quotebot-cli <command> --help' for details on a command.")
}

func hasFlag(flag string, args []string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "error: %s environment variable is required\n", key)
		os.Exit(1)
	}
	return v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --- migrate ---

func runMigrate() int {
	dbURL := requireEnv("DATABASE_URL")

	fmt.Println("connecting to database...")
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: migration init failed: %v\n", err)
		return 1
	}
	defer m.Close()

	fmt.Println("running migrations...")
	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		fmt.Fprintf(os.Stderr, "error: migration failed: %v\n", upErr)
		return 1
	}

	v, dirty, _ := m.Version()
	fmt.Println(migrateSummary(upErr, v, dirty))
	return 0
}

func migrateSummary(upErr error, version uint, dirty bool) string {
	if upErr == migrate.ErrNoChange {
		return fmt.Sprintf("no new migrations (current version: %d)", version)
	}
	return fmt.Sprintf("migrations applied (version: %d, dirty: %v)", version, dirty)
}

// --- seed ---

func runSeed() int {
	dbURL := requireEnv("DATABASE_URL")
	ctx := context.Background()

	fmt.Println("connecting to database...")
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: database connection failed: %v\n", err)
		return 1
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: database ping failed: %v\n", err)
		return 1
	}

	sf, err := snowflake.NewGenerator(0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: snowflake init failed: %v\n", err)
		return 1
	}

	const guildID, channelID, adderID = 1, 2, 3
	demo := []struct {
		messageID  int64
		authorID   int64
		authorName string
		content    string
	}{
		{1001, 11, "alice", "the deploy is fine, probably"},
		{1002, 12, "bob", "I have never once read the docs"},
		{1003, 11, "alice", "happy monday friends"},
	}

	now := time.Now()
	fmt.Println("creating quotes...")
	for _, d := range demo {
		jumpURL := fmt.Sprintf("https://discord.com/channels/%d/%d/%d", guildID, channelID, d.messageID)
		_, err := pool.Exec(ctx,
			`INSERT INTO quotes (id, message_id, guild_id, channel_id, author_id, author_name, content, jump_url, adder_id, added_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			 ON CONFLICT (message_id) DO NOTHING`,
			sf.Generate().Int64(), d.messageID, guildID, channelID,
			d.authorID, d.authorName, d.content, jumpURL, adderID, now,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: creating quote: %v\n", err)
			return 1
		}
	}

	fmt.Println()
	fmt.Println("seed complete:")
	fmt.Printf("  quotes: %d quotes by alice and bob\n", len(demo))
	return 0
}

// --- token ---

func runToken(args []string) int {
	secret := requireEnv("JWT_SECRET")

	var userID int64
	admin := hasFlag("--admin", args)
	for _, a := range args {
		if a == "--admin" {
			continue
		}
		parsed, err := strconv.ParseInt(a, 10, 64)
		if err != nil || parsed <= 0 {
			fmt.Fprintf(os.Stderr, "error: invalid user id %q\n", a)
			return 1
		}
		userID = parsed
	}
	if userID == 0 {
		fmt.Fprintln(os.Stderr, "error: user id is required")
		return 1
	}

	token, err := auth.NewTokenService(secret).GenerateAccessToken(userID, admin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: generating token: %v\n", err)
		return 1
	}
	fmt.Println(token)
	return 0
}

// --- health ---

func runHealth() int {
	serverURL := envOr("SERVER_URL", "http://localhost:8080")
	url := serverURL + "/health"

	fmt.Printf("checking %s ...\n", url)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("status: %d\n", resp.StatusCode)
	if len(body) > 0 {
		fmt.Printf("body:   %s\n", string(body))
	}

	if resp.StatusCode == http.StatusOK {
		fmt.Println("server is healthy")
		return 0
	}
	fmt.Fprintln(os.Stderr, "server returned non-200 status")
	return 1
}
