package api

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ExportRunner triggers a one-shot report export.
type ExportRunner interface {
	RunOnce(ctx context.Context) error
}

// NewServer creates an HTTP server with all routes configured. filters and
// exporter are optional.
func NewServer(port string, handler *Handler, filters *FilterHandler, exporter ExportRunner, adminAPIKey string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("POST /format-balance-history", handler.FormatBalanceHistory)
	mux.HandleFunc("POST /tokens", handler.Tokens)
	mux.HandleFunc("POST /transactions", handler.Transactions)

	if filters != nil {
		filters.Register(mux)
	}

	if exporter != nil {
		exportHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := exporter.RunOnce(r.Context()); err != nil {
				slog.Error("export failed", "error", err)
				writeError(w, http.StatusInternalServerError, "export failed")
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "exported"})
		})
		if adminAPIKey != "" {
			mux.Handle("POST /api/v1/export", requireAuth(adminAPIKey, exportHandler))
		} else {
			mux.Handle("POST /api/v1/export", exportHandler)
		}
	}

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
