package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"checking-account-api/internal/config"
	"checking-account-api/internal/events"
	"checking-account-api/internal/handler"
	"checking-account-api/internal/repository"
	"checking-account-api/internal/service"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
)

// Server represents the HTTP server
type Server struct {
	router    *mux.Router
	server    *http.Server
	db        *sql.DB
	publisher *events.KafkaPublisher
	logger    *slog.Logger
	port      string
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	// Initialize database connection
	db, err := sql.Open("postgres", cfg.GetDBConnectionString())
	if err != nil {
		return nil, err
	}

	// Configure connection pool for better performance
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test database connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := repository.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Successfully connected to database")

	// Event publishing is optional; without brokers the ledger runs alone
	var publisher *events.KafkaPublisher
	var entryPublisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers)
		entryPublisher = publisher
		logger.Info("Kafka publisher enabled", "brokers", cfg.KafkaBrokers)
	}

	// Initialize store and services
	store := repository.NewStore(db, logger)
	accountService := service.NewAccountService(store.Account(), logger)
	statementService := service.NewStatementService(store.Statement(), entryPublisher, logger)
	userService := service.NewUserService(store.User(), logger)
	authService := service.NewAuthService(store.User(), cfg.JWTSecret, logger)

	// Initialize handlers
	accountHandler := handler.NewAccountHandler(accountService)
	statementHandler := handler.NewStatementHandler(statementService)
	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(authService)

	// Setup router
	router := mux.NewRouter()
	router.Use(loggingMiddleware(logger))

	// Open routes: health, login, and user registration
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": "database unavailable"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods("GET")

	router.HandleFunc("/auth", authHandler.Authenticate).Methods("POST")
	router.HandleFunc("/users", userHandler.CreateUser).Methods("POST")

	// User routes (token required)
	users := router.PathPrefix("/users").Subrouter()
	users.Use(authHandler.RequireAuth)
	users.HandleFunc("", userHandler.ListUsers).Methods("GET")
	users.HandleFunc("/{id}", userHandler.GetUser).Methods("GET")
	users.HandleFunc("/{id}", userHandler.UpdateUser).Methods("PUT")
	users.HandleFunc("/{id}", userHandler.DeleteUser).Methods("DELETE")

	// Checking-account routes (token required)
	accounts := router.PathPrefix("/checkingaccounts").Subrouter()
	accounts.Use(authHandler.RequireAuth)
	accounts.HandleFunc("", accountHandler.CreateAccount).Methods("POST")
	accounts.HandleFunc("", accountHandler.ListAccounts).Methods("GET")
	accounts.HandleFunc("/searchByName", accountHandler.SearchByName).Methods("GET")

	// Account-scoped routes additionally verify the account exists
	scoped := accounts.PathPrefix("/{id}").Subrouter()
	scoped.Use(accountHandler.VerifyExists)
	scoped.HandleFunc("", accountHandler.GetAccount).Methods("GET")
	scoped.HandleFunc("", accountHandler.UpdateAccount).Methods("PUT")
	scoped.HandleFunc("", accountHandler.DeleteAccount).Methods("DELETE")
	scoped.HandleFunc("/deposit", statementHandler.Deposit).Methods("POST")
	scoped.HandleFunc("/withdraw", statementHandler.Withdraw).Methods("POST")
	scoped.HandleFunc("/pix", statementHandler.Pix).Methods("POST")
	scoped.HandleFunc("/ted", statementHandler.Ted).Methods("POST")
	scoped.HandleFunc("/balance", statementHandler.GetBalance).Methods("GET")
	scoped.HandleFunc("/statement", statementHandler.GetStatement).Methods("GET")
	scoped.HandleFunc("/statement/period", statementHandler.GetByPeriod).Methods("GET")
	scoped.HandleFunc("/statement/{entryId}", statementHandler.GetEntry).Methods("GET")

	return &Server{
		router:    router,
		db:        db,
		publisher: publisher,
		logger:    logger,
	}, nil
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create response wrapper to capture status code
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration", time.Since(start),
				"user_agent", r.UserAgent(),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port string) (string, error) {
	// Create listener first to get actual port
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return "", err
	}

	// Get the actual port being used
	addr := listener.Addr().(*net.TCPAddr)
	s.port = strconv.Itoa(addr.Port)

	// Create HTTP server
	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server", "port", s.port)

	// Start server in background
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Server failed", "error", err)
		}
	}()

	return s.port, nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.Error("Failed to close Kafka publisher", "error", err)
		}
	}

	// Close database connection
	if s.db != nil {
		s.db.Close()
	}

	// Shutdown HTTP server
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// GetPort returns the port the server is listening on
func (s *Server) GetPort() string {
	return s.port
}

// GetBaseURL returns the base URL for the server
func (s *Server) GetBaseURL() string {
	return "http://localhost:" + s.port
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *mux.Router {
	return s.router
}

// StartServer starts the server with the given configuration
func StartServer(cfg *config.Config) (*Server, string, error) {
	// Initialize logger - use io.Discard for tests to avoid noise
	var logger *slog.Logger
	if cfg.ServerPort == "0" {
		// Test environment - use discard logger
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	} else {
		// Production environment - use stdout
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	server, err := NewServer(cfg, logger)
	if err != nil {
		return nil, "", err
	}

	// Start the server and get the actual port
	port, err := server.Start(cfg.ServerPort)
	if err != nil {
		return nil, "", err
	}

	return server, port, nil
}
