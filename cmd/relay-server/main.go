// Package main provides the relay server executable: REST API, websocket
// relay and durable topic storage.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/coregx/relay"
	relicaadapter "github.com/coregx/relay/adapters/relica"
	"github.com/coregx/relay/auth"
	"github.com/coregx/relay/cmd/relay-server/internal/api"
	"github.com/coregx/relay/cmd/relay-server/internal/config"
	"github.com/coregx/relay/model"
)

// ZapLogger implements relay.Logger on top of a zap.SugaredLogger.
type ZapLogger struct {
	logger *zap.SugaredLogger
}

func (l *ZapLogger) Debugf(format string, args ...interface{}) { l.logger.Debugf(format, args...) }
func (l *ZapLogger) Infof(format string, args ...interface{})  { l.logger.Infof(format, args...) }
func (l *ZapLogger) Warnf(format string, args ...interface{})  { l.logger.Warnf(format, args...) }
func (l *ZapLogger) Errorf(format string, args ...interface{}) { l.logger.Errorf(format, args...) }
func (l *ZapLogger) Info(message string)                       { l.logger.Info(message) }

func main() {
	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := &ZapLogger{logger: zl.Sugar()}

	logger.Info("🚀 Starting relay server...")

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	logger.Infof("Server: %s:%d, database: %s", cfg.Server.Host, cfg.Server.Port, cfg.Database.Driver)

	// Connect to database
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.GetDSN())
	if err != nil {
		logger.Errorf("Failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Errorf("Failed to close database: %v", closeErr)
		}
	}()

	if err := db.Ping(); err != nil {
		logger.Errorf("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	logger.Info("✅ Database connection established")

	if err := applySchema(db, cfg.Database.Driver); err != nil {
		logger.Errorf("Failed to apply schema: %v", err)
		os.Exit(1)
	}
	logger.Info("✅ Database schema applied")

	// Create repositories using Relica adapters
	repos := relicaadapter.NewRepositoriesWithPrefix(db, cfg.Database.Driver, cfg.Database.Prefix)

	// Load signing keys
	privateKey, err := auth.LoadPrivateKeyPEM(cfg.Auth.PrivateKeyPath)
	if err != nil {
		logger.Errorf("Failed to load private key: %v", err)
		os.Exit(1)
	}
	publicKey := &privateKey.PublicKey
	if cfg.Auth.PublicKeyPath != "" {
		publicKey, err = auth.LoadPublicKeyPEM(cfg.Auth.PublicKeyPath)
		if err != nil {
			logger.Errorf("Failed to load public key: %v", err)
			os.Exit(1)
		}
	}

	verifier, err := auth.NewVerifier(publicKey, repos.User)
	if err != nil {
		logger.Errorf("Failed to create verifier: %v", err)
		os.Exit(1)
	}
	issuer, err := auth.NewIssuer(privateKey, repos.User, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	if err != nil {
		logger.Errorf("Failed to create issuer: %v", err)
		os.Exit(1)
	}

	if err := seedAdminUser(cfg, repos.User); err != nil {
		logger.Errorf("Failed to seed admin user: %v", err)
		os.Exit(1)
	}

	// Hub plus the notifier that turns store/engine events into broadcasts
	hub := relay.NewHub(logger)
	notifier := relay.NewHubChangeNotifier(hub, repos.Topic, logger)

	// Create TopicStore service
	store, err := relay.NewTopicStore(
		relay.WithStoreRepositories(repos.Topic, repos.Publisher, repos.Subscriber),
		relay.WithStoreNotifier(notifier),
		relay.WithStoreLogger(logger),
	)
	if err != nil {
		logger.Errorf("Failed to create topic store: %v", err)
		os.Exit(1)
	}

	// Create AppendEngine service
	engine, err := relay.NewAppendEngine(
		relay.WithAppendRepository(repos.Topic),
		relay.WithAppendNotifier(notifier),
		relay.WithAppendLogger(logger),
	)
	if err != nil {
		logger.Errorf("Failed to create append engine: %v", err)
		os.Exit(1)
	}

	// Create connection gateway
	gateway, err := relay.NewGateway(
		relay.WithGatewayHub(hub),
		relay.WithGatewayEngine(engine),
		relay.WithGatewayVerifier(verifier),
		relay.WithGatewayLogger(logger),
	)
	if err != nil {
		logger.Errorf("Failed to create gateway: %v", err)
		os.Exit(1)
	}

	// Create API handler
	handler := api.NewHandler(store, issuer, verifier, logger)

	// Setup HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", handler.HandleLogin)
	mux.HandleFunc("/api/pubsub", handler.HandlePubSub)
	mux.HandleFunc("/api/pubsub/", handler.HandleTopic) // {id}, {id}/share, shared/{sharedId}
	mux.HandleFunc("/api/ping", handler.HandlePing)
	mux.Handle("/ws/", gateway)
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        addr,
		Handler:     api.CORS(cfg.Server.OriginURL, loggingMiddleware(mux, logger)),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Infof("🌐 Server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Failed to start server: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("🛑 Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("✅ Server stopped gracefully")
}

// applySchema executes the embedded DDL for the configured driver. Re-runs
// are safe: statements use IF NOT EXISTS and "already exists" errors from
// engines without it are skipped.
func applySchema(db *sql.DB, driverName string) error {
	schema, err := relay.Schema(driverName)
	if err != nil {
		return err
	}
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "already exists") {
				continue
			}
			return err
		}
	}
	return nil
}

// seedAdminUser creates the configured admin principal when it is missing.
func seedAdminUser(cfg *config.Config, users relay.UserRepository) error {
	if cfg.Auth.AdminUsername == "" || cfg.Auth.AdminPassword == "" {
		return nil
	}

	ctx := context.Background()
	if _, err := users.FindByUsername(ctx, cfg.Auth.AdminUsername); err == nil {
		return nil
	} else if !relay.IsNoData(err) {
		return err
	}

	hashed, err := auth.HashPassword(cfg.Auth.AdminPassword)
	if err != nil {
		return err
	}
	_, err = users.Create(ctx, model.NewUser(cfg.Auth.AdminUsername, hashed, cfg.Auth.AdminAPIKey))
	return err
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(next http.Handler, logger relay.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debugf("%s %s - %v", r.Method, r.URL.Path, time.Since(start))
	})
}
