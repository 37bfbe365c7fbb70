package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestWebhookMetricsObserve(t *testing.T) {
	m := NewWebhookMetrics(prometheus.NewRegistry())
	m.ObserveInbound("text", "triagem")
	m.ObserveInbound("interactive", "escolha_modalidade")
	m.ObserveOutbound("sent")
	m.ObserveStoreError("wix")
	m.ObserveWebhookLatency("text", 0.25)
}

func TestWebhookMetricsNilSafe(t *testing.T) {
	var m *WebhookMetrics
	m.ObserveInbound("text", "triagem")
	m.ObserveOutbound("sent")
	m.ObserveStoreError("redis")
	m.ObserveWebhookLatency("text", 0.1)
}
