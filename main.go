package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/coreybb/menuorders/api"
	"github.com/coreybb/menuorders/auth"
	"github.com/coreybb/menuorders/datastore"
	rh "github.com/coreybb/menuorders/route-handlers"
	"github.com/coreybb/menuorders/webutil"
)

const (
	defaultPort        = "8080"
	defaultDatabaseURL = "user=postgres password=password dbname=menu host=localhost port=5432 sslmode=disable"
	defaultDriver      = "postgres"
	defaultTokenTTL    = 30 * time.Minute
	devSecretKey       = "dev_secret_key"
	envProduction      = "production"
	secretBytes        = 32
	dbPingTimeout      = 5 * time.Second
	schemaTimeout      = 10 * time.Second
	shutdownTimeout    = 15 * time.Second
	dbMaxOpenConns     = 25
	dbMaxIdleConns     = 25
	dbConnMaxLifetime  = 5 * time.Minute
)

// Drivers registered by the blank imports above.
var supportedDrivers = map[string]bool{"postgres": true, "pgx": true}

type config struct {
	port        string
	dbDriver    string
	databaseURL string
	secretKey   string
	tokenTTL    time.Duration
	environment string
}

func main() {
	// Check for gen-secret subcommand
	if len(os.Args) > 1 && os.Args[1] == "gen-secret" {
		runGenSecret()
		return
	}

	// A missing .env file is fine; real deployments use the environment.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	db, err := setupDatabase(cfg.dbDriver, cfg.databaseURL)
	if err != nil {
		log.Fatalf("Database setup failed: %v", err)
	}
	defer db.Close()

	menuRepo := datastore.NewMenuRepository(db)

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), schemaTimeout)
	err = menuRepo.EnsureSchema(schemaCtx)
	cancelSchema()
	if err != nil {
		log.Fatalf("Schema setup failed: %v", err)
	}

	credentials, err := auth.NewCredentialStore(auth.DefaultSeedUsers, 0)
	if err != nil {
		log.Fatalf("Credential store setup failed: %v", err)
	}
	tokenService, err := auth.NewTokenService([]byte(cfg.secretKey), cfg.tokenTTL, credentials)
	if err != nil {
		log.Fatalf("Token service setup failed: %v", err)
	}

	tokenHandler := rh.NewTokenHandler(tokenService)
	orderHandler := rh.NewOrderHandler(menuRepo)

	apiRouter := api.SetupRoutes(tokenService, tokenHandler, orderHandler)

	mainRouter := chi.NewRouter()
	mainRouter.Mount("/", apiRouter)

	startServer(cfg.port, mainRouter)
}

func loadConfig() (config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = defaultDriver
	}
	if !supportedDrivers[driver] {
		return config{}, fmt.Errorf("unsupported DB_DRIVER %q (use postgres or pgx)", driver)
	}

	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		dbURL = defaultDatabaseURL
		log.Println("WARNING: DB_CONNECTION_STRING not set, using default local connection string.")
	}

	environment := strings.ToLower(os.Getenv("APP_ENV"))
	if environment == "" {
		environment = "development"
	}

	secret := os.Getenv("SECRET_KEY")
	if secret == "" || secret == devSecretKey {
		if environment == envProduction {
			return config{}, errors.New("SECRET_KEY must be set to a random secret in production (see gen-secret)")
		}
		secret = devSecretKey
		log.Println("WARNING: SECRET_KEY not set, using development secret. Tokens are forgeable.")
	}

	tokenTTL := defaultTokenTTL
	if raw := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			return config{}, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be a positive integer, got %q", raw)
		}
		tokenTTL = time.Duration(minutes) * time.Minute
	}

	return config{
		port:        port,
		dbDriver:    driver,
		databaseURL: dbURL,
		secretKey:   secret,
		tokenTTL:    tokenTTL,
		environment: environment,
	}, nil
}

func runGenSecret() {
	secret, err := webutil.GenerateRandomToken(secretBytes)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gen-secret:", err)
		os.Exit(1)
	}
	fmt.Println(secret)
}

func setupDatabase(driver, connStr string) (*sql.DB, error) {
	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		db.Close() // Close unusable connection pool
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection successful (driver %s)", driver)
	return db, nil
}

func startServer(port string, router http.Handler) {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownSignal // Block until signal received
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
