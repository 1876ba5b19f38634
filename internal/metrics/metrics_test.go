package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordUpload(t *testing.T) {
	okBefore := testutil.ToFloat64(uploadsTotal.WithLabelValues("success"))
	errBefore := testutil.ToFloat64(uploadsTotal.WithLabelValues("error"))
	bytesBefore := testutil.ToFloat64(uploadBytes)

	RecordUpload(100, true)
	RecordUpload(50, false)

	if got := testutil.ToFloat64(uploadsTotal.WithLabelValues("success")) - okBefore; got != 1 {
		t.Errorf("success uploads delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(uploadsTotal.WithLabelValues("error")) - errBefore; got != 1 {
		t.Errorf("error uploads delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(uploadBytes) - bytesBefore; got != 100 {
		t.Errorf("bytes delta = %v, want 100 (failed uploads do not count)", got)
	}
}

func TestRecordAuthDecision(t *testing.T) {
	before := testutil.ToFloat64(authDecisionsTotal.WithLabelValues("denied"))
	RecordAuthDecision(false)
	if got := testutil.ToFloat64(authDecisionsTotal.WithLabelValues("denied")) - before; got != 1 {
		t.Errorf("denied delta = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordNotifyFailure()

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "mediastore_notify_failures_total") {
		t.Error("notify failure counter missing from exposition")
	}
}
