package stats

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lfg-bot/database"
)

// Snapshot is the read-only stats payload consumed by the website proxy.
type Snapshot struct {
	Servers         int64  `json:"servers"`
	AdsPosted       int64  `json:"ads_posted"`
	ConnectionsMade int64  `json:"connections_made"`
	MatchesMade     int64  `json:"matches_made"`
	BotStartTime    string `json:"bot_start_time"`
}

// Server serves the stats snapshot, a health probe, and prometheus metrics
// over plain HTTP for the (external) website to consume.
type Server struct {
	counters *database.CounterDB
	guilds   *database.GuildConfigDB
	srv      *http.Server
}

// NewServer creates a stats server listening on addr.
func NewServer(addr string, counters *database.CounterDB, guilds *database.GuildConfigDB) *Server {
	s := &Server{counters: counters, guilds: guilds}
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	s.srv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start runs the HTTP server until Stop is called.
func (s *Server) Start() {
	log.Printf("Stats server listening on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("Stats server stopped: %v", err)
	}
}

// Stop shuts the HTTP server down gracefully.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Printf("Stats server shutdown: %v", err)
	}
}

// Handler exposes the mux, used by tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// handleStats returns the current snapshot. Before any activity every counter
// reads zero; this is a normal response, not an error.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	counters, err := s.counters.Snapshot()
	if err != nil {
		log.Printf("Failed to read counter snapshot: %v", err)
		http.Error(w, "snapshot unavailable", http.StatusInternalServerError)
		return
	}

	servers, err := s.guilds.CountGuilds()
	if err != nil {
		log.Printf("Failed to count guilds: %v", err)
		http.Error(w, "snapshot unavailable", http.StatusInternalServerError)
		return
	}

	startTime, err := s.counters.GetMeta(database.MetaKeyBotStartTime)
	if err != nil {
		log.Printf("Failed to read bot start time: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Snapshot{
		Servers:         servers,
		AdsPosted:       counters[database.MetricAdsPosted],
		ConnectionsMade: counters[database.MetricConnectionsMade],
		MatchesMade:     counters[database.MetricMatchesMade],
		BotStartTime:    startTime,
	})
}
