package nm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/distfs/distfs/internal/logger"
)

// AdminAPI exposes ambient health/metrics/debug endpoints over HTTP,
// entirely separate from the wire protocol: an *http.Server wrapper with
// a context-driven Start/Stop pair and a sync.Once-guarded shutdown.
type AdminAPI struct {
	server       *http.Server
	nm           *Server
	shutdownOnce sync.Once
	port         int
}

// NewAdminAPI builds (but does not start) the admin HTTP server for the
// given naming server.
func NewAdminAPI(port int, nm *Server) *AdminAPI {
	router := chi.NewRouter()
	a := &AdminAPI{nm: nm, port: port}

	router.Get("/healthz", a.handleHealthz)
	router.Get("/metrics", promhttp.Handler().ServeHTTP)
	router.Get("/debug/index", a.handleDebugIndex)

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}
	return a
}

func (a *AdminAPI) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type debugIndexResponse struct {
	LRU            map[string]string `json:"lru"`
	StorageServers []string          `json:"storage_servers"`
}

// handleDebugIndex dumps the LRU and registered SS list read-only, for
// operational debugging.
func (a *AdminAPI) handleDebugIndex(w http.ResponseWriter, r *http.Request) {
	resp := debugIndexResponse{
		LRU: a.nm.index.LRUSnapshot(),
	}
	for _, ss := range a.nm.registry.ListStorageServers() {
		resp.StorageServers = append(resp.StorageServers, ss.String())
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Start blocks until ctx is cancelled or ListenAndServe fails.
func (a *AdminAPI) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("admin API listening", "port", a.port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.Stop(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("admin API failed: %w", err)
	}
}

func (a *AdminAPI) Stop(ctx context.Context) error {
	var err error
	a.shutdownOnce.Do(func() {
		err = a.server.Shutdown(ctx)
	})
	return err
}
