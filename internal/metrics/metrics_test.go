package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/v1/interviews/{candidate_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/api/v1/interviews/{candidate_id}", "418"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/interviews/abc-123", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", rec.Code)
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/api/v1/interviews/{candidate_id}", "418"))
	if after != before+1 {
		t.Fatalf("expected counter to increase by 1, got %v -> %v", before, after)
	}
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(fallbacks.WithLabelValues("evaluation", "timeout"))
	IncFallback("evaluation", "timeout")
	if got := testutil.ToFloat64(fallbacks.WithLabelValues("evaluation", "timeout")); got != before+1 {
		t.Fatalf("fallback counter not incremented: %v", got)
	}

	ObserveProviderRequest("generate_questions", "success", 10*time.Millisecond)
	if got := testutil.ToFloat64(providerRequests.WithLabelValues("generate_questions", "success")); got < 1 {
		t.Fatalf("provider request counter not incremented: %v", got)
	}

	SetProviderAvailable(false)
	if got := testutil.ToFloat64(providerAvailable); got != 0 {
		t.Fatalf("expected provider unavailable gauge, got %v", got)
	}
	SetProviderAvailable(true)
	if got := testutil.ToFloat64(providerAvailable); got != 1 {
		t.Fatalf("expected provider available gauge, got %v", got)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	IncDistributionWarning()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "interview_question_distribution_warnings_total") {
		t.Fatalf("expected domain metric in exposition output")
	}
}
