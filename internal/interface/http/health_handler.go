package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/sensus-health/sensus-api/pkg/response"
)

type HealthHandler struct {
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	ES      *elasticsearch.Client
	Version string
	started time.Time
}

func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client, es *elasticsearch.Client, version string) *HealthHandler {
	return &HealthHandler{Pool: pool, Redis: rdb, ES: es, Version: version, started: time.Now()}
}

// Live is the shallow probe: the process is up and serving.
func (h *HealthHandler) Live(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.Version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	}, "healthy", nil)
}

// Detailed pings every backing service. Postgres and Redis are critical:
// either failing yields 503. Elasticsearch only degrades search, so its
// failure is reported but does not fail the probe.
func (h *HealthHandler) Detailed(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	checks["postgres"] = h.checkPostgres(ctx)
	if checks["postgres"] != "ok" {
		healthy = false
	}
	checks["redis"] = h.checkRedis(ctx)
	if checks["redis"] != "ok" {
		healthy = false
	}
	checks["elasticsearch"] = h.checkES(ctx)

	report := gin.H{
		"status":  "ok",
		"version": h.Version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"checks":  checks,
	}
	if !healthy {
		report["status"] = "unavailable"
		response.Error(c, http.StatusServiceUnavailable, response.CodeUnavailable, "a critical dependency is down", report)
		return
	}
	response.Success(c, http.StatusOK, report, "health report", nil)
}

func (h *HealthHandler) checkPostgres(ctx context.Context) string {
	if h.Pool == nil {
		return "not configured"
	}
	if err := h.Pool.Ping(ctx); err != nil {
		return "unreachable: " + err.Error()
	}
	return "ok"
}

func (h *HealthHandler) checkRedis(ctx context.Context) string {
	if h.Redis == nil {
		return "not configured"
	}
	if err := h.Redis.Ping(ctx).Err(); err != nil {
		return "unreachable: " + err.Error()
	}
	return "ok"
}

func (h *HealthHandler) checkES(ctx context.Context) string {
	if h.ES == nil {
		return "not configured"
	}
	res, err := h.ES.Ping(h.ES.Ping.WithContext(ctx))
	if err != nil {
		return "unreachable: " + err.Error()
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return "error: " + res.Status()
	}
	return "ok"
}
