package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthController handles health check endpoints.
type HealthController struct {
	dbHealthChecker    func() bool
	cacheHealthChecker func() bool
	now                func() time.Time
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Cache     string `json:"cache"`
	Timestamp string `json:"timestamp"`
}

// NewHealthController creates a new health controller instance.
// A nil cacheHealthChecker means the interval cache lives in process.
func NewHealthController(dbHealthChecker, cacheHealthChecker func() bool) *HealthController {
	return &HealthController{
		dbHealthChecker:    dbHealthChecker,
		cacheHealthChecker: cacheHealthChecker,
		now:                time.Now,
	}
}

// Check handles GET /health requests.
// Without a database no analytics endpoint can answer, so the API reports
// unavailable with 503. A lost Redis only degrades it: interval series are
// then rebuilt from the database on every request.
func (h *HealthController) Check(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Database:  probe(h.dbHealthChecker, "disconnected"),
		Cache:     probe(h.cacheHealthChecker, "memory"),
		Timestamp: h.now().UTC().Format(time.RFC3339),
	}

	code := http.StatusOK
	switch {
	case response.Database != "connected":
		response.Status = "unavailable"
		code = http.StatusServiceUnavailable
	case response.Cache == "disconnected":
		response.Status = "degraded"
	}

	c.JSON(code, response)
}

// probe reports "connected" or "disconnected", or absent when no checker is set.
func probe(check func() bool, absent string) string {
	if check == nil {
		return absent
	}
	if check() {
		return "connected"
	}
	return "disconnected"
}
