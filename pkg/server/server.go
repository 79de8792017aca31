package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/heathcliff26/simple-fileserver/pkg/middleware"
	"github.com/heathcliff26/webhook-validator/pkg/config"
	"github.com/heathcliff26/webhook-validator/pkg/validator"
)

// Maximum size of a webhook body that will be read
const maxBodySize = 10 << 20

const contentTypeForm = "application/x-www-form-urlencoded"

type Server struct {
	addr      string
	ssl       config.SSLConfig
	path      string
	publicURL string
	validator *validator.RequestValidator
}

func NewServer(cfgServer config.ServerConfig, cfgWebhook config.WebhookConfig) (*Server, error) {
	v, err := validator.NewRequestValidator(cfgWebhook.AuthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create request validator: %w", err)
	}

	return &Server{
		addr:      ":" + strconv.Itoa(cfgServer.Port),
		ssl:       cfgServer.SSL,
		path:      strings.TrimSuffix(cfgWebhook.Path, "/"),
		publicURL: strings.TrimSuffix(cfgWebhook.PublicURL, "/"),
		validator: v,
	}, nil
}

// Handle incoming signed webhook requests
// URL: POST <path>
func (s *Server) webhookHandler(res http.ResponseWriter, req *http.Request) {
	signature := req.Header.Get(validator.SignatureHeader)
	if signature == "" {
		slog.Error("Missing signature header", slog.String("header", validator.SignatureHeader))
		res.WriteHeader(http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(res, req.Body, maxBodySize))
	if err != nil {
		slog.Error("Failed to read request body", slog.String("err", err.Error()))
		res.WriteHeader(http.StatusBadRequest)
		return
	}

	requestURL := s.requestURL(req)

	var payload validator.Request
	if isFormRequest(req) {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			slog.Error("Failed to parse form body", slog.String("err", err.Error()))
			res.WriteHeader(http.StatusBadRequest)
			return
		}
		params := make(map[string]string, len(values))
		for k := range values {
			params[k] = values.Get(k)
		}
		payload = validator.FormRequest{Params: params}
	} else {
		payload = validator.RawBodyRequest{Body: body}
	}

	if !s.validator.Validate(requestURL, payload, signature) {
		slog.Warn("Rejected webhook request with invalid signature", slog.String("url", requestURL), slog.String("type", requestType(payload)))
		res.WriteHeader(http.StatusForbidden)
		return
	}

	slog.Debug("Accepted webhook request", slog.String("url", requestURL), slog.String("type", requestType(payload)))
	writeStatus(res, http.StatusOK, "valid")
}

// Return a health status of the server
// URL: GET /healthz
func (s *Server) handleHealthCheck(rw http.ResponseWriter, _ *http.Request) {
	writeStatus(rw, http.StatusOK, "ok")
}

// Reconstruct the url the sender used for the request.
func (s *Server) requestURL(req *http.Request) string {
	if s.publicURL != "" {
		return s.publicURL + req.URL.RequestURI()
	}

	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	if proto := req.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + req.Host + req.URL.RequestURI()
}

// Create the router for the server
func (s *Server) Handler() http.Handler {
	router := http.NewServeMux()
	if s.path == "" {
		router.HandleFunc("POST /", s.webhookHandler)
	} else {
		router.HandleFunc("POST "+s.path, s.webhookHandler)
		router.HandleFunc("POST "+s.path+"/", s.webhookHandler)
	}
	router.HandleFunc("GET /healthz", s.handleHealthCheck)

	return middleware.Logging(router)
}

// Starts the server and exits with error if that fails
func (s *Server) Run() error {
	server := http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	var err error
	if s.ssl.Enabled {
		slog.Info("Starting server", slog.String("addr", s.addr), slog.String("sslKey", s.ssl.Key), slog.String("sslCert", s.ssl.Cert))
		err = server.ListenAndServeTLS(s.ssl.Cert, s.ssl.Key)
	} else {
		slog.Info("Starting server", slog.String("addr", s.addr))
		err = server.ListenAndServe()
	}

	// This just means the server was closed after running
	if errors.Is(err, http.ErrServerClosed) {
		slog.Info("Server closed, exiting")
		return nil
	}
	return fmt.Errorf("failed to start server: %w", err)
}
