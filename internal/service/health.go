package service

import (
	"context"
	"net/http"
	"time"
)

type healthStatus string

const (
	statusHealthy  healthStatus = "healthy"
	statusCritical healthStatus = "critical"
)

type healthReport struct {
	Status healthStatus      `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// handleHealth probes every registered dependency; any failure is critical.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := healthReport{Status: statusHealthy, Checks: make(map[string]string, len(s.checks))}

	for name, check := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		err := check(ctx)
		cancel()
		if err != nil {
			report.Status = statusCritical
			report.Checks[name] = err.Error()
			continue
		}
		report.Checks[name] = "ok"
	}

	code := http.StatusOK
	if report.Status == statusCritical {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}
