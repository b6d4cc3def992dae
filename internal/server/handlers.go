package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bobmcallan/stockbot/internal/models"
)

// validate is shared; validator caches struct metadata and is safe for concurrent use.
var validate = validator.New()

// analysisRequest is the body of POST /api/stock-analysis.
type analysisRequest struct {
	Ticker string `json:"ticker" validate:"required"`
}

// handleSearchStocks handles GET /api/search-stocks?query=
func (s *Server) handleSearchStocks(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		WriteError(w, http.StatusBadRequest, "Query parameter is required")
		return
	}

	match, err := s.app.Resolver.Resolve(r.Context(), query)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrTickerNotFound):
			WriteError(w, http.StatusNotFound, "No matching stocks found")
		case errors.Is(err, models.ErrQueryRequired):
			WriteError(w, http.StatusBadRequest, "Query parameter is required")
		default:
			s.logger.Error().Str("query", query).Err(err).Msg("Ticker search failed")
			WriteError(w, http.StatusInternalServerError, "Search failed: "+err.Error())
		}
		return
	}

	WriteJSON(w, http.StatusOK, []*models.TickerMatch{match})
}

// handleStockAnalysis handles POST /api/stock-analysis
func (s *Server) handleStockAnalysis(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req analysisRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Ticker = strings.TrimSpace(req.Ticker)
	if err := validate.Struct(req); err != nil {
		WriteError(w, http.StatusBadRequest, "Ticker symbol is required")
		return
	}

	analysis, err := s.app.InsightService.FetchInsights(r.Context(), req.Ticker)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrTickerRequired):
			WriteError(w, http.StatusBadRequest, "Ticker symbol is required")
		case errors.Is(err, models.ErrStockNotFound):
			WriteError(w, http.StatusNotFound, "Stock not found")
		default:
			s.logger.Error().Str("ticker", req.Ticker).Err(err).Msg("Stock analysis failed")
			WriteError(w, http.StatusInternalServerError, "Failed to fetch stock data: "+err.Error())
		}
		return
	}

	WriteJSON(w, http.StatusOK, analysis)
}
