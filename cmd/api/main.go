package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"store-auditor/auditor"
	"store-auditor/internal/config"
	"store-auditor/internal/types"
)

// APIRequest represents the request body for the API
type APIRequest struct {
	URL string `json:"url"`
}

// APIResponse represents the response from the API
type APIResponse struct {
	Success bool               `json:"success"`
	Data    *types.AuditReport `json:"data,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// storeAuditor is the part of auditor.Auditor the server uses
type storeAuditor interface {
	AuditStore(ctx context.Context, rawURL string) (*types.AuditReport, error)
	Close()
}

// Server holds the API server configuration
type Server struct {
	logger     *logrus.Logger
	config     *types.Config
	newAuditor func() storeAuditor
}

// NewServer creates a new API server
func NewServer() (*Server, error) {
	// Load .env file if present
	_ = godotenv.Load()

	// Setup logging
	logger := logrus.New()

	// Set timestamp format with milliseconds
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}

	s := &Server{
		logger: logger,
		config: cfg,
	}
	s.newAuditor = func() storeAuditor {
		return auditor.NewAuditor(s.config, s.logger)
	}
	return s, nil
}

// handleAudit handles the audit API endpoint
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	// Set CORS headers
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	// Handle preflight requests
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req APIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		s.sendError(w, "No store URL provided", http.StatusBadRequest)
		return
	}

	s.logger.Infof("API request received for store: %s", req.URL)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	a := s.newAuditor()
	defer a.Close()

	report, err := a.AuditStore(ctx, req.URL)
	if err != nil {
		s.logger.Warnf("Audit of %s failed: %v", req.URL, err)
		s.sendError(w, types.UserMessage(err), statusFor(err))
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(APIResponse{Success: true, Data: report}); err != nil {
		s.logger.Errorf("Failed to encode response: %v", err)
	}
}

// statusFor maps an audit error to an HTTP status code
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidURLFormat), errors.Is(err, types.ErrLocalURLRejected):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNotAStore):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrRetrievalExhausted), errors.Is(err, types.ErrParse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	response := APIResponse{
		Success: false,
		Error:   message,
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Errorf("Failed to encode error response: %v", err)
	}
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/audit", s.handleAudit)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start starts the API server
func (s *Server) Start(port string) error {
	s.logger.Infof("Starting API server on port %s", port)
	s.logger.Info("Available endpoints:")
	s.logger.Info("  POST /audit  - Audit a storefront")
	s.logger.Info("  GET  /health - Health check")

	return http.ListenAndServe(":"+port, s.Handler())
}

func main() {
	// Get port from environment variable, default to 8080
	serverPort := "8080"
	if envPort := os.Getenv("API_PORT"); envPort != "" {
		serverPort = envPort
		fmt.Printf("Using port from environment variable API_PORT: %s\n", serverPort)
	} else {
		fmt.Printf("No API_PORT environment variable found, using default: %s\n", serverPort)
	}

	server, err := NewServer()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting API server on port %s", serverPort)
	log.Fatal(server.Start(serverPort))
}
