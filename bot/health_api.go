package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"incoin/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// CacheInspector exposes the record cache to the health API
type CacheInspector interface {
	Stats() []store.GuildStats
	Resync(ctx context.Context, guildID int64) (*store.ResyncReport, error)
}

// HealthAPI serves liveness and cache diagnostics over HTTP
type HealthAPI struct {
	cache CacheInspector
	mux   *chi.Mux
}

// NewHealthAPI creates the router for the health API
func NewHealthAPI(cache CacheInspector) *HealthAPI {
	api := &HealthAPI{
		cache: cache,
		mux:   chi.NewRouter(),
	}
	api.routes()
	return api
}

// Handler returns the HTTP handler
func (a *HealthAPI) Handler() http.Handler {
	return a.mux
}

func (a *HealthAPI) routes() {
	r := a.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/debug", func(r chi.Router) {
		r.Get("/cache", a.handleCacheStats)
		r.Post("/guilds/{guildID}/resync", a.handleResync)
	})
}

func (a *HealthAPI) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"guilds": a.cache.Stats()})
}

func (a *HealthAPI) handleResync(w http.ResponseWriter, r *http.Request) {
	guildID, err := strconv.ParseInt(chi.URLParam(r, "guildID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid guild id")
		return
	}

	report, err := a.cache.Resync(r.Context(), guildID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrUnavailable) {
			status = http.StatusServiceUnavailable
		}
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"error":    err,
		}).Warn("Resync via health API failed")
		writeJSON(w, status, map[string]any{"error": err.Error(), "report": report})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": report})
}

// StartHealthAPI serves the health API on port until ctx is cancelled
func StartHealthAPI(ctx context.Context, port int, cache CacheInspector) {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewHealthAPI(cache).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Health API listening on port %d", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Health API stopped: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Health API shutdown: %v", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
