package metrics_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/revealboard/revealboard/dashboard/internal/api"
	"github.com/revealboard/revealboard/dashboard/internal/config"
	"github.com/revealboard/revealboard/dashboard/internal/metrics"
	"github.com/revealboard/revealboard/dashboard/internal/store"
	"github.com/revealboard/revealboard/pkg/types"
)

var labels = config.Labels{A: "Boy", B: "Girl"}

func parse(t *testing.T, fams []*dto.MetricFamily) map[string]*dto.MetricFamily {
	t.Helper()
	var buf bytes.Buffer
	if err := metrics.Write(&buf, fams); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var parser expfmt.TextParser
	out, err := parser.TextToMetricFamilies(&buf)
	if err != nil {
		t.Fatalf("parse exposition: %v\n%s", err, buf.String())
	}
	return out
}

// value returns the single counter or gauge value of mf.
func value(t *testing.T, mf *dto.MetricFamily) float64 {
	t.Helper()
	if mf == nil || len(mf.GetMetric()) != 1 {
		t.Fatalf("family %v: want exactly one metric", mf)
	}
	m := mf.GetMetric()[0]
	if m.Counter != nil {
		return m.Counter.GetValue()
	}
	return m.Gauge.GetValue()
}

func TestGather_EmptyState(t *testing.T) {
	mfs := parse(t, metrics.Gather(store.State{}, labels, 0))

	if _, ok := mfs[metrics.NameValue]; ok {
		t.Error("reveal_value should be absent before the first pair")
	}
	if _, ok := mfs[metrics.NameTransport]; ok {
		t.Error("reveal_transport_info should be absent before start")
	}
	if v := value(t, mfs[metrics.NameUpdates]); v != 0 {
		t.Errorf("updates: got %v", v)
	}
}

func TestGather_WithPair(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := store.State{
		Current:   &types.ValuePair{A: 3, B: 5, UpdatedAt: ts},
		Transport: store.TransportPoll,
		LastError: "HTTP 500",
		Updates:   4,
		Failures:  2,
		Dropped:   1,
		Stale:     3,
	}
	mfs := parse(t, metrics.Gather(s, labels, 7))

	vals := map[string]float64{}
	for _, m := range mfs[metrics.NameValue].GetMetric() {
		vals[m.GetLabel()[0].GetValue()] = m.GetGauge().GetValue()
	}
	if vals["Boy"] != 3 || vals["Girl"] != 5 {
		t.Errorf("reveal_value: got %v", vals)
	}

	checks := map[string]float64{
		metrics.NameUpdatedAt:   float64(ts.Unix()),
		metrics.NameUpdates:     4,
		metrics.NameFailures:    2,
		metrics.NameDropped:     1,
		metrics.NameStale:       3,
		metrics.NameClients:     7,
		metrics.NameLastErrored: 1,
	}
	for name, want := range checks {
		if got := value(t, mfs[name]); got != want {
			t.Errorf("%s: got %v, want %v", name, got, want)
		}
	}

	tr := mfs[metrics.NameTransport].GetMetric()[0].GetLabel()[0]
	if tr.GetName() != "transport" || tr.GetValue() != "poll" {
		t.Errorf("transport label: got %s=%s", tr.GetName(), tr.GetValue())
	}
	if mfs[metrics.NameUpdates].GetType() != dto.MetricType_COUNTER {
		t.Errorf("updates type: got %v", mfs[metrics.NameUpdates].GetType())
	}
}

func TestHandler(t *testing.T) {
	st := store.New()
	st.Update(types.ValuePair{A: 1, B: 2})
	p := api.NewPresenter(st, api.ViewFromConfig(config.Default()))
	h := metrics.Handler(p, func() int { return 2 })

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type: got %q", ct)
	}
	body := rr.Body.String()
	for _, want := range []string{`reveal_value{label="Boy"} 1`, `reveal_value{label="Girl"} 2`, "reveal_ws_clients 2"} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in\n%s", want, body)
		}
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST: got %d, want 405", rr.Code)
	}
}
