package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string            `json:"status" jsonschema:"required,enum=ok,enum=degraded"`
	Checks map[string]string `json:"checks" jsonschema:"required"`
}

// Check tests one dependency
type Check func(ctx context.Context) error

// HealthCheck runs every check and reports 503 when any fails
func HealthCheck(checks map[string]Check) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		response := HealthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				response.Status = "degraded"
				response.Checks[name] = err.Error()
				continue
			}
			response.Checks[name] = "ok"
		}

		status := http.StatusOK
		if response.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, response)
	}
}
