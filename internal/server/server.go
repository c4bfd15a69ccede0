// Package server wires the catalog, query, history, photo, and backup
// components into an HTTP server.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/githsimon/Findr/internal/backup"
	"github.com/githsimon/Findr/internal/catalog"
	"github.com/githsimon/Findr/internal/config"
	"github.com/githsimon/Findr/internal/handler"
	"github.com/githsimon/Findr/internal/history"
	"github.com/githsimon/Findr/internal/metrics"
	"github.com/githsimon/Findr/internal/middleware"
	"github.com/githsimon/Findr/internal/persist"
	"github.com/githsimon/Findr/internal/photo"
	"github.com/githsimon/Findr/internal/websocket"
)

// Server holds all long-lived components.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	backend persist.Backend

	store   *catalog.Store
	histLog *history.Log
	photos  *photo.Store

	hub     *websocket.Hub
	metrics *metrics.Collector
	backups *backup.Manager
	limiter *middleware.RateLimiter
}

// New builds the component graph: persistence backend, catalog store, history
// log, photo store, websocket hub, metrics, and the backup manager. Committed
// catalog mutations fan out to metrics and the hub via the store subscription.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	backend, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}

	store, err := catalog.NewStore(backend, logger.With("component", "catalog"))
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	histLog, err := history.New(backend, cfg.HistoryLimit, logger.With("component", "history"))
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	photos, err := photo.NewStore(filepath.Join(cfg.DataDir, "photos"))
	if err != nil {
		return nil, err
	}

	hub := websocket.NewHub(logger.With("component", "websocket"))
	m := metrics.NewCollector()

	store.Subscribe(func(ev catalog.Event) {
		m.RecordMutation(ev.Entity, ev.Action)
		hub.Broadcast(websocket.NewMessage(ev.Entity, ev.Action, ev.ID, nil))
	})

	var backupCfg backup.Config
	if cfg.Backup.Enabled {
		backupCfg = backup.Config{
			S3: backup.S3Config{
				Endpoint:  cfg.Backup.S3Endpoint,
				Bucket:    cfg.Backup.S3Bucket,
				Region:    cfg.Backup.S3Region,
				AccessKey: cfg.Backup.S3AccessKey,
				SecretKey: cfg.Backup.S3SecretKey,
			},
			Passphrase:    cfg.Backup.Passphrase,
			ScheduleHour:  cfg.Backup.ScheduleHour,
			RetentionDays: cfg.Backup.RetentionDays,
		}
	}
	backups := backup.NewManager(backupCfg, backend, func(st backup.Status) {
		hub.Broadcast(websocket.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(st.State),
			Extra:  map[string]any{"in_progress": st.InProgress},
		})
	}, logger.With("component", "backup"))

	return &Server{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
		store:   store,
		histLog: histLog,
		photos:  photos,
		hub:     hub,
		metrics: m,
		backups: backups,
		limiter: middleware.NewRateLimiter(cfg.RateLimitPerMin, cfg.RateLimitBurst),
	}, nil
}

func openBackend(cfg *config.Config) (persist.Backend, error) {
	switch cfg.Storage {
	case "sqlite":
		return persist.OpenSQLite(filepath.Join(cfg.DataDir, "findr.db"))
	default:
		return persist.NewJSONFileBackend(cfg.DataDir)
	}
}

// Backups returns the backup manager, for lifecycle control from main.
func (s *Server) Backups() *backup.Manager { return s.backups }

// Router builds the HTTP routing table with logging and rate limiting applied
// to every route.
func (s *Server) Router() http.Handler {
	items := handler.NewItemHandler(s.store, s.photos, s.metrics, s.logger)
	locations := handler.NewLocationHandler(s.store, catalog.DeletePolicy(s.cfg.DeletePolicy), s.metrics, s.logger)
	search := handler.NewSearchHandler(s.store, s.histLog, s.metrics, s.logger)
	hist := handler.NewHistoryHandler(s.histLog, s.metrics, s.logger)
	photos := handler.NewPhotoHandler(s.photos, s.logger)
	backups := handler.NewBackupHandler(s.backups, s.logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/items", items.List)
	mux.HandleFunc("POST /api/items", items.Create)
	mux.HandleFunc("GET /api/items/recent", items.Recent)
	mux.HandleFunc("GET /api/items/categories", items.Categories)
	mux.HandleFunc("GET /api/items/{id}", items.Get)
	mux.HandleFunc("PATCH /api/items/{id}", items.Update)
	mux.HandleFunc("DELETE /api/items/{id}", items.Delete)
	mux.HandleFunc("POST /api/items/{id}/favorite", items.ToggleFavorite)

	mux.HandleFunc("GET /api/locations", locations.List)
	mux.HandleFunc("POST /api/locations", locations.Create)
	mux.HandleFunc("GET /api/locations/{id}", locations.Get)
	mux.HandleFunc("PATCH /api/locations/{id}", locations.Update)
	mux.HandleFunc("DELETE /api/locations/{id}", locations.Delete)
	mux.HandleFunc("POST /api/locations/{id}/sublocations", locations.AddSublocation)

	mux.HandleFunc("GET /api/search", search.Search)

	mux.HandleFunc("GET /api/history", hist.List)
	mux.HandleFunc("DELETE /api/history", hist.Clear)
	mux.HandleFunc("DELETE /api/history/{id}", hist.Remove)

	mux.HandleFunc("POST /api/photos", photos.Upload)
	mux.HandleFunc("GET /api/photos/{key}", photos.Get)
	mux.HandleFunc("DELETE /api/photos/{key}", photos.Delete)

	mux.HandleFunc("POST /api/backup/run", backups.Run)
	mux.HandleFunc("GET /api/backup/status", backups.Status)
	mux.HandleFunc("GET /api/backup", backups.List)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /ws", websocket.HandleWebSocket(s.hub))

	var h http.Handler = mux
	h = middleware.RateLimit(s.limiter)(h)
	h = middleware.RequestLogger(s.logger)(h)
	return h
}

// Close releases background resources in dependency order.
func (s *Server) Close() error {
	s.backups.Stop()
	s.limiter.Stop()
	s.hub.Shutdown()
	return s.backend.Close()
}
