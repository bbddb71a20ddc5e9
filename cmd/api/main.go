package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"cart-extractor/extractor"
	"cart-extractor/internal/types"
	"cart-extractor/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// APIRequest represents the request body for the API. Either HTML (with a
// hostname or URL to pick the strategy) or a URL to fetch must be given.
type APIRequest struct {
	Hostname string `json:"hostname"`
	URL      string `json:"url"`
	HTML     string `json:"html"`
}

// APIResponse represents the response from the API
type APIResponse struct {
	Success bool                    `json:"success"`
	Data    *types.ExtractionResult `json:"data,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

// SiteInfo describes one registered strategy
type SiteInfo struct {
	SiteID      string   `json:"site_id"`
	DisplayName string   `json:"display_name"`
	URLPatterns []string `json:"url_patterns,omitempty"`
	Fallback    bool     `json:"fallback,omitempty"`
}

// Server holds the API server configuration
type Server struct {
	logger    *logrus.Logger
	config    *types.Config
	registry  *extractor.Registry
	extractor *extractor.CartExtractor
}

// NewServer creates a new API server
func NewServer(config *types.Config, logger *logrus.Logger, source types.PageSource) (*Server, error) {
	registry, err := extractor.NewDefaultRegistry(config, logger)
	if err != nil {
		return nil, err
	}

	return &Server{
		logger:    logger,
		config:    config,
		registry:  registry,
		extractor: extractor.NewCartExtractor(registry, source, logger),
	}, nil
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/extract", s.handleExtract).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/sites", s.handleSites).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Use(corsMiddleware)
	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleExtract handles the extraction API endpoint
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req APIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.Hostname = strings.TrimSpace(req.Hostname)
	req.URL = strings.TrimSpace(req.URL)

	var (
		result *types.ExtractionResult
		err    error
	)
	switch {
	case req.HTML != "":
		hostname := req.Hostname
		if hostname == "" && req.URL != "" {
			hostname, err = extractor.HostnameFromURL(req.URL)
			if err != nil {
				s.sendError(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		if hostname == "" {
			s.sendError(w, "hostname or url is required with html", http.StatusBadRequest)
			return
		}
		s.logger.Infof("API request: extract %d bytes of HTML for %s", len(req.HTML), hostname)
		result, err = s.extractor.ExtractHTML(hostname, req.HTML)
	case req.URL != "":
		s.logger.Infof("API request: extract %s", req.URL)
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
		defer cancel()
		result, err = s.extractor.Extract(ctx, req.URL, req.Hostname)
	default:
		s.sendError(w, "html or url is required", http.StatusBadRequest)
		return
	}

	if err != nil {
		s.logger.Warnf("Extraction request failed: %v", err)
		s.sendError(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(APIResponse{Success: true, Data: result}); err != nil {
		s.logger.Errorf("Failed to encode response: %v", err)
	}
}

// handleSites lists the registered strategies in priority order
func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	var sites []SiteInfo
	for _, st := range s.registry.Strategies() {
		sites = append(sites, SiteInfo{
			SiteID:      st.SiteID(),
			DisplayName: st.DisplayName(),
			URLPatterns: st.URLPatterns(),
		})
	}
	if fb := s.registry.Fallback(); fb != nil {
		sites = append(sites, SiteInfo{SiteID: fb.SiteID(), DisplayName: fb.DisplayName(), Fallback: true})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(sites); err != nil {
		s.logger.Errorf("Failed to encode sites: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	response := APIResponse{
		Success: false,
		Error:   message,
	}

	w.Header().Set("Content-Type", "application/json")
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

// Start starts the API server
func (s *Server) Start(port string) error {
	s.logger.Infof("Starting API server on port %s", port)
	s.logger.Info("Available endpoints:")
	s.logger.Info("  POST /extract - Extract cart items from HTML or a URL")
	s.logger.Info("  GET  /sites   - List registered site strategies")
	s.logger.Info("  GET  /health  - Health check")

	return http.ListenAndServe(":"+port, s.Router())
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
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
	return logger
}

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	serverPort := "8080"
	if envPort := os.Getenv("API_PORT"); envPort != "" {
		serverPort = envPort
		fmt.Printf("Using port from environment variable API_PORT: %s\n", serverPort)
	}

	logger := newLogger()
	config := types.DefaultConfig()
	config.SitesFile = os.Getenv("SITES_FILE")
	config.UseHeadlessBrowser = os.Getenv("USE_BROWSER") == "true"

	var source types.PageSource
	if config.UseHeadlessBrowser {
		source = utils.NewBrowserClient(config, logger)
	} else {
		httpClient := utils.NewHTTPClient(config, logger)
		defer httpClient.Close()
		source = httpClient
	}

	server, err := NewServer(config, logger, source)
	if err != nil {
		logger.Fatalf("Failed to create server: %v", err)
	}

	if err := server.Start(serverPort); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}
