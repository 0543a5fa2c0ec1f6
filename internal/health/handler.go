package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	httputil "lodging/pkg/http"
	"lodging/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const readyTimeout = 2 * time.Second

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

type Response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type Handler struct {
	checks map[string]Check
	log    *logger.Logger
}

func NewHandler(log *logger.Logger) *Handler {
	return &Handler{
		checks: make(map[string]Check),
		log:    log,
	}
}

func (h *Handler) Add(name string, check Check) *Handler {
	h.checks[name] = check
	return h
}

func MongoCheck(client *mongo.Client) Check {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}

func RedisCheck(client *redis.Client) Check {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	httputil.WriteJSON(w, http.StatusOK, Response{Status: "ok"})
}

// Ready runs every check concurrently and fails if any of them does.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]error, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = h.checks[name](ctx)
		}()
	}
	wg.Wait()

	resp := Response{Status: "ready", Checks: make(map[string]string, len(names))}
	status := http.StatusOK
	for i, name := range names {
		if err := results[i]; err != nil {
			h.log.Error("Readiness check failed",
				"check", name,
				"error", err,
				"path", r.URL.Path,
			)
			resp.Checks[name] = "error"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	httputil.WriteJSON(w, status, resp)
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
