package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/abcd5251/PawXAI/internal/explorer"
	"github.com/abcd5251/PawXAI/internal/ledger"
	"github.com/abcd5251/PawXAI/internal/narrate"
	"github.com/abcd5251/PawXAI/internal/portfolio"
	"github.com/abcd5251/PawXAI/internal/render"
)

// Handler provides the plain-text report endpoints.
type Handler struct {
	ledger     *ledger.Service
	portfolio  *portfolio.Service
	narrator   *narrate.Service
	generative render.TextRenderer // optional
	fallback   *render.Deterministic
}

// NewHandler creates a new report handler. generative may be nil, in which
// case every response uses the deterministic renderer.
func NewHandler(ledgerSvc *ledger.Service, portfolioSvc *portfolio.Service, narrator *narrate.Service, generative render.TextRenderer) *Handler {
	return &Handler{
		ledger:     ledgerSvc,
		portfolio:  portfolioSvc,
		narrator:   narrator,
		generative: generative,
		fallback:   render.NewDeterministic(),
	}
}

type reportRequest struct {
	ChainID string `json:"chain_id"`
	Address string `json:"address"`
}

func decodeReportRequest(w http.ResponseWriter, r *http.Request) (reportRequest, bool) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	req.ChainID = strings.TrimSpace(req.ChainID)
	req.Address = strings.TrimSpace(req.Address)
	if req.ChainID == "" || req.Address == "" {
		writeError(w, http.StatusBadRequest, "chain_id and address are required")
		return req, false
	}
	return req, true
}

// FormatBalanceHistory handles POST /format-balance-history.
func (h *Handler) FormatBalanceHistory(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReportRequest(w, r)
	if !ok {
		return
	}

	report, err := h.ledger.Report(r.Context(), req.ChainID, req.Address)
	if err != nil {
		writeUpstreamError(w, "balance history", err)
		return
	}
	writePlainText(w, h.fallback.RenderLedger(report))
}

// Tokens handles POST /tokens.
func (h *Handler) Tokens(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReportRequest(w, r)
	if !ok {
		return
	}

	report, err := h.portfolio.Report(r.Context(), req.ChainID, req.Address)
	if err != nil {
		writeUpstreamError(w, "tokens", err)
		return
	}

	text := h.renderText(r.Context(), func(ctx context.Context, rr render.TextRenderer) (string, error) {
		return rr.RenderPortfolio(ctx, report)
	})
	writePlainText(w, text)
}

// Transactions handles POST /transactions.
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReportRequest(w, r)
	if !ok {
		return
	}

	report, err := h.narrator.Report(r.Context(), req.ChainID, req.Address)
	if err != nil {
		writeUpstreamError(w, "transactions", err)
		return
	}

	text := h.renderText(r.Context(), func(ctx context.Context, rr render.TextRenderer) (string, error) {
		return rr.RenderTransactions(ctx, report)
	})
	writePlainText(w, text)
}

// renderText tries the generative renderer first and falls back to the
// deterministic one on any failure. The deterministic renderer cannot fail.
func (h *Handler) renderText(ctx context.Context, renderFn func(context.Context, render.TextRenderer) (string, error)) string {
	if h.generative != nil {
		if text, err := renderFn(ctx, h.generative); err == nil {
			return text
		} else {
			slog.Warn("generative render failed, using fallback", "error", err)
		}
	}
	text, _ := renderFn(ctx, h.fallback)
	return text
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeUpstreamError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, explorer.ErrUpstream) {
		slog.Error("upstream explorer failed", "op", op, "error", err)
		writeError(w, http.StatusBadGateway, "upstream explorer error")
		return
	}
	slog.Error("request failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writePlainText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
