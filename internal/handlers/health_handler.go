package handlers

import (
	"context"
	"net/http"
	"sort"
	"text/template"
	"time"

	"interviewassist/core/internal/config"
	"interviewassist/core/internal/models"
	"interviewassist/core/internal/resilience"
	"interviewassist/core/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "degraded" | "auth_error" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status   string                    `json:"status"`  // "ready" | "not_ready"
	Service  string                    `json:"service"` // Service name
	Checks   map[string]ReadinessCheck `json:"checks"`  // Individual check results
	Provider *models.ProviderStatus    `json:"provider,omitempty"`
}

// StatusReporter is satisfied by *resilience.Executor.
type StatusReporter interface {
	Status() models.ProviderStatus
}

// TemplateSource is satisfied by *prompts.PromptManager.
type TemplateSource interface {
	GetTemplates() map[string]map[string]*template.Template
}

// Pinger is a backing store readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	provider      StatusReporter
	promptManager TemplateSource
	config        *config.Config
	dependencies  map[string]Pinger
}

func NewHealthHandler(provider StatusReporter, promptManager TemplateSource, cfg *config.Config, dependencies map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		provider:      provider,
		promptManager: promptManager,
		config:        cfg,
		dependencies:  dependencies,
	}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "interview",
		"version": "1.0.0",
	})
}

// ReadyzHandler reports not ready only when something the fallbacks cannot
// cover is broken. An unreachable provider is "degraded"; a rejected API key
// is surfaced as "auth_error" so operators notice it.
func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true
	response := ReadinessResponse{Service: "interview"}

	if handler.provider == nil {
		checks["provider"] = ReadinessCheck{Status: "failed", Message: "AI provider not initialized"}
		allChecksPass = false
	} else {
		status := handler.provider.Status()
		response.Provider = &status
		switch {
		case status.Available:
			checks["provider"] = ReadinessCheck{Status: "ok"}
		case status.LastErrorKind == string(resilience.KindAuthError):
			checks["provider"] = ReadinessCheck{Status: "auth_error", Message: "AI API authentication failed"}
		default:
			checks["provider"] = ReadinessCheck{Status: "degraded", Message: "AI provider unavailable, serving fallbacks"}
		}
	}

	// verify prompt manager has templates loaded
	if handler.promptManager == nil {
		checks["prompt_manager"] = ReadinessCheck{Status: "failed", Message: "Prompt manager not initialized"}
		allChecksPass = false
	} else if len(handler.promptManager.GetTemplates()) == 0 {
		checks["prompt_manager"] = ReadinessCheck{Status: "failed", Message: "No prompt templates loaded"}
		allChecksPass = false
	} else {
		checks["prompt_manager"] = ReadinessCheck{Status: "ok"}
	}

	// verify configuration is valid
	if handler.config == nil {
		checks["configuration"] = ReadinessCheck{Status: "failed", Message: "Configuration not loaded"}
		allChecksPass = false
	} else {
		checks["configuration"] = ReadinessCheck{Status: "ok"}
	}

	names := make([]string, 0, len(handler.dependencies))
	for name := range handler.dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ctx, cancel := context.WithTimeout(request.Context(), 2*time.Second)
		err := handler.dependencies[name].Ping(ctx)
		cancel()
		if err != nil {
			checks[name] = ReadinessCheck{Status: "failed", Message: err.Error()}
			allChecksPass = false
			continue
		}
		checks[name] = ReadinessCheck{Status: "ok"}
	}

	response.Checks = checks
	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
