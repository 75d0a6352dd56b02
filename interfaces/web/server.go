// Package web wires the HTTP surface of the document browser.
package web

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"

	"doclib/application"
	"doclib/database"
	"doclib/interfaces/web/handlers"
	"doclib/interfaces/web/presenters"
	"doclib/logging"
)

// Dependencies holds what the router needs from the lower layers
type Dependencies struct {
	DB      *database.Database
	Browser *application.DocumentBrowser
	Links   presenters.LinkResolver
	Logger  *logging.Logger

	// Location renders grid dates; UTC when nil.
	Location *time.Location

	// HTTPLogPath enables JSON request logging to a file when set.
	HTTPLogPath string
}

// NewRouter builds the chi router with middleware, system and browse routes.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	setupHTTPLogging(r, deps)
	r.Use(middleware.Recoverer)

	setupSystemRoutes(r, deps)

	presenter := presenters.NewDocumentPresenter(deps.Links, deps.Location)
	handlers.Routes(r,
		handlers.NewLibraryHandlers(deps.Browser),
		handlers.NewSessionHandlers(deps.Browser, presenter),
	)
	return r
}

func setupHTTPLogging(r *chi.Mux, deps Dependencies) {
	if deps.HTTPLogPath == "" {
		return
	}

	logFile, err := os.OpenFile(deps.HTTPLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		deps.Logger.Error("Failed to open HTTP log file", "error", err, "path", deps.HTTPLogPath)
		return
	}
	// Note: logFile stays open for the server lifetime

	httpLogger := httplog.NewLogger("doclib", httplog.Options{
		Writer: logFile,
		JSON:   true,
	})
	r.Use(httplog.RequestLogger(httpLogger))

	deps.Logger.Info("HTTP request logging enabled", "path", deps.HTTPLogPath)
}

func setupSystemRoutes(r *chi.Mux, deps Dependencies) {
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response := map[string]any{"status": "ok"}
		if deps.DB != nil {
			stats, err := deps.DB.Health(r.Context())
			if err != nil {
				handlers.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "error": err.Error()})
				return
			}
			response["database"] = stats
		}
		handlers.WriteJSON(w, http.StatusOK, response)
	})
}

// Serve runs the HTTP server until ctx is cancelled, then drains connections.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *logging.Logger) error {
	server := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
