package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// Health is the payload of the booking-database readiness check. Orchestration keys
// off Status; the pool counters are for operators watching saturation during
// clinic hours.
type Health struct {
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	TotalConns    int32     `json:"total_conns"`
	IdleConns     int32     `json:"idle_conns"`
	AcquiredConns int32     `json:"acquired_conns"`
	MaxConns      int32     `json:"max_conns"`
	CheckedAt     time.Time `json:"checked_at"`
}

// CheckHealth pings the database and snapshots pool usage.
func CheckHealth(ctx context.Context, pool *pgxpool.Pool) *Health {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	stat := pool.Stat()
	h := &Health{
		Status:        "healthy",
		TotalConns:    stat.TotalConns(),
		IdleConns:     stat.IdleConns(),
		AcquiredConns: stat.AcquiredConns(),
		MaxConns:      stat.MaxConns(),
		CheckedAt:     time.Now().UTC(),
	}
	if err := pool.Ping(ctx); err != nil {
		h.Status = "unhealthy"
		h.Error = err.Error()
	}
	return h
}

// HealthHandler serves the readiness endpoint, answering 503 while the
// database is unreachable.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := CheckHealth(c.Request().Context(), pool)
		code := http.StatusOK
		if h.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, h)
	}
}
