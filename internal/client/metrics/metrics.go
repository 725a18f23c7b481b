// Package metrics holds the client's Prometheus collectors. Each client
// registers on its own registry; nothing is exported over HTTP, the CLI
// prints a snapshot on demand.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Reauth outcomes.
const (
	ReauthSuccess       = "success"
	ReauthFailure       = "failure"
	ReauthNoCredentials = "no_credentials"
	ReauthShared        = "shared"
)

type Metrics struct {
	registry *prometheus.Registry

	Requests *prometheus.CounterVec
	Reauth   *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wilt",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Outbound API requests by method and response code.",
		}, []string{"method", "code"}),
		Reauth: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wilt",
			Subsystem: "client",
			Name:      "reauth_total",
			Help:      "Re-authentication attempts triggered by 401 responses, by outcome.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.Requests, m.Reauth)
	return m
}

// ObserveRequest counts one finished request. code 0 means no response was
// received.
func (m *Metrics) ObserveRequest(method string, code int) {
	label := strconv.Itoa(code)
	if code == 0 {
		label = "error"
	}
	m.Requests.WithLabelValues(method, label).Inc()
}

func (m *Metrics) ObserveReauth(result string) {
	m.Reauth.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteSummary prints every non-zero counter as "name{labels} value", one
// per line, sorted.
func (m *Metrics) WriteSummary(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if metric.GetCounter().GetValue() == 0 {
				continue
			}
			lines = append(lines, formatCounter(mf.GetName(), metric))
		}
	}
	sort.Strings(lines)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatCounter(name string, metric *dto.Metric) string {
	labels := make([]string, 0, len(metric.GetLabel()))
	for _, lp := range metric.GetLabel() {
		labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
	}
	return fmt.Sprintf("%s{%s} %v", name, strings.Join(labels, ","), metric.GetCounter().GetValue())
}
