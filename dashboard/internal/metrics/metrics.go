package metrics

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/revealboard/revealboard/dashboard/internal/api"
	"github.com/revealboard/revealboard/dashboard/internal/config"
	"github.com/revealboard/revealboard/dashboard/internal/store"
)

// Metric names.
const (
	NameValue       = "reveal_value"
	NameUpdatedAt   = "reveal_updated_timestamp_seconds"
	NameUpdates     = "reveal_updates_total"
	NameFailures    = "reveal_failures_total"
	NameDropped     = "reveal_dropped_messages_total"
	NameStale       = "reveal_stale_updates_total"
	NameTransport   = "reveal_transport_info"
	NameLastErrored = "reveal_last_attempt_failed"
	NameClients     = "reveal_ws_clients"
)

// Gather builds the metric families for one snapshot. clients is the number
// of connected WebSocket clients. Families are sorted by name.
func Gather(s store.State, labels config.Labels, clients int) []*dto.MetricFamily {
	fams := []*dto.MetricFamily{
		counter(NameUpdates, "Value pairs applied to the store.", s.Updates),
		counter(NameFailures, "Failed acquisition attempts.", s.Failures),
		counter(NameDropped, "Malformed push messages ignored.", s.Dropped),
		counter(NameStale, "Value pairs older than the current one, not applied.", s.Stale),
		gauge(NameClients, "Connected WebSocket clients.", float64(clients)),
		gauge(NameLastErrored, "1 when the most recent acquisition attempt failed.", boolValue(s.LastError != "")),
	}

	if s.Current != nil {
		fams = append(fams,
			&dto.MetricFamily{
				Name: proto.String(NameValue),
				Help: proto.String("Latest acquired value per label."),
				Type: dto.MetricType_GAUGE.Enum(),
				Metric: []*dto.Metric{
					gaugeMetric(s.Current.A, labelPair("label", labels.A)),
					gaugeMetric(s.Current.B, labelPair("label", labels.B)),
				},
			},
			gauge(NameUpdatedAt, "Timestamp of the latest value pair.",
				float64(s.Current.UpdatedAt.UnixMilli())/1000),
		)
	}

	if s.Transport != "" {
		fams = append(fams, &dto.MetricFamily{
			Name:   proto.String(NameTransport),
			Help:   proto.String("Active acquisition transport."),
			Type:   dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{gaugeMetric(1, labelPair("transport", s.Transport))},
		})
	}

	sort.Slice(fams, func(i, j int) bool { return fams[i].GetName() < fams[j].GetName() })
	return fams
}

// Write renders families in the text exposition format.
func Write(w io.Writer, fams []*dto.MetricFamily) error {
	for _, mf := range fams {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Handler serves GET /metrics from p's store and labels. clients may be nil.
func Handler(p *api.Presenter, clients func() int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		n := 0
		if clients != nil {
			n = clients()
		}

		var buf bytes.Buffer
		if err := Write(&buf, Gather(p.Store().Snapshot(), p.View().Labels, n)); err != nil {
			slog.Error("metrics: render", "err", err)
			http.Error(w, "render metrics", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
		w.Write(buf.Bytes()) //nolint:errcheck
	})
}

// --- builders ---------------------------------------------------------------

func counter(name, help string, v uint64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Help:   proto.String(help),
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{Counter: &dto.Counter{Value: proto.Float64(float64(v))}}},
	}
}

func gauge(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Help:   proto.String(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{gaugeMetric(v)},
	}
}

func gaugeMetric(v float64, labels ...*dto.LabelPair) *dto.Metric {
	return &dto.Metric{Label: labels, Gauge: &dto.Gauge{Value: proto.Float64(v)}}
}

func labelPair(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: proto.String(name), Value: proto.String(value)}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
