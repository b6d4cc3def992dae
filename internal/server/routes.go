package server

import (
	"net/http"

	"github.com/bobmcallan/stockbot/internal/common"
)

// WelcomeMessage is served at the root path.
const WelcomeMessage = "Welcome to the Stock Analysis API! Use the endpoint '/api/stock-analysis' to fetch insights."

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/", s.handleWelcome)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Analysis
	mux.HandleFunc("/api/search-stocks", s.handleSearchStocks)
	mux.HandleFunc("/api/stock-analysis", s.handleStockAnalysis)
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(WelcomeMessage))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}
