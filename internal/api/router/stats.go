package router

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/wolfman30/mindscreen/pkg/logging"
)

const statsPrefix = "mindscreen_"

// StatsHandler summarises the service's own metric families for operators.
type StatsHandler struct {
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

func NewStatsHandler(g prometheus.Gatherer, logger *logging.Logger) *StatsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsHandler{gatherer: g, logger: logger}
}

// MetricSummary is one metric family reduced to totals per label set.
type MetricSummary struct {
	Name   string             `json:"name"`
	Type   string             `json:"type"`
	Help   string             `json:"help,omitempty"`
	Values map[string]float64 `json:"values"`
}

// ServeHTTP handles GET /admin/stats
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	families, err := h.gatherer.Gather()
	if err != nil {
		h.logger.Error("failed to gather metrics", "error", err)
		http.Error(w, "failed to gather metrics", http.StatusInternalServerError)
		return
	}
	out := Summarize(families)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"metrics": out})
}

// Summarize keeps mindscreen_ families. Counters and gauges report their value, histograms
// their observation count and sum.
func Summarize(families []*dto.MetricFamily) []MetricSummary {
	var out []MetricSummary
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), statsPrefix) {
			continue
		}
		s := MetricSummary{
			Name:   strings.TrimPrefix(mf.GetName(), statsPrefix),
			Type:   strings.ToLower(mf.GetType().String()),
			Help:   mf.GetHelp(),
			Values: make(map[string]float64),
		}
		for _, m := range mf.GetMetric() {
			key := labelKey(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				s.Values[key] += m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				s.Values[key] += m.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				s.Values[key+suffix(key, "count")] += float64(m.GetHistogram().GetSampleCount())
				s.Values[key+suffix(key, "sum")] += m.GetHistogram().GetSampleSum()
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func labelKey(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, l.GetName()+"="+l.GetValue())
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func suffix(key, name string) string {
	if key == "" {
		return name
	}
	return ":" + name
}
