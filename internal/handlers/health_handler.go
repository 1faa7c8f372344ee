package handlers

import (
	"context"
	"net/http"
	"time"

	"saylo/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"`  // "ready" | "not_ready"
	Service string                    `json:"service"` // Service name
	Checks  map[string]ReadinessCheck `json:"checks"`  // Individual check results
}

// DependencyCheck is one readiness dependency check.
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthHandler struct {
	service string
	version string
	deps    []DependencyCheck
}

func NewHealthHandler(service, version string, deps ...DependencyCheck) *HealthHandler {
	return &HealthHandler{service: service, version: version, deps: deps}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, _ *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": handler.service,
		"version": handler.version,
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := context.WithTimeout(request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]ReadinessCheck, len(handler.deps))
	allChecksPass := true
	for _, dep := range handler.deps {
		if err := dep.Check(ctx); err != nil {
			checks[dep.Name] = ReadinessCheck{Status: "failed", Message: err.Error()}
			allChecksPass = false
			continue
		}
		checks[dep.Name] = ReadinessCheck{Status: "ok"}
	}

	response := ReadinessResponse{
		Service: handler.service,
		Checks:  checks,
	}

	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
