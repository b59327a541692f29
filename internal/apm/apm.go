// Package apm provides New Relic application performance monitoring for the
// VerusHash service: hash computation latency, non-canonical detections,
// activation events, and upstream node health.
package apm

import (
	"context"
	"sync"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/verus-hash/verushash-service/internal/config"
	"github.com/verus-hash/verushash-service/internal/util"
)

// Agent wraps New Relic APM functionality.
type Agent struct {
	cfg *config.APMConfig
	app *newrelic.Application
	mu  sync.RWMutex
}

// NewAgent creates a new New Relic agent.
func NewAgent(cfg *config.APMConfig) *Agent {
	return &Agent{cfg: cfg}
}

// Start initializes the New Relic agent.
func (a *Agent) Start() error {
	if !a.cfg.Enabled {
		util.Info("APM disabled")
		return nil
	}

	if a.cfg.LicenseKey == "" {
		util.Warn("APM license key not configured, disabling")
		return nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(a.cfg.AppName),
		newrelic.ConfigLicense(a.cfg.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
	if err != nil {
		return err
	}

	if err := app.WaitForConnection(5 * time.Second); err != nil {
		util.Warnf("APM connection timeout: %v (will retry in background)", err)
	}

	a.mu.Lock()
	a.app = app
	a.mu.Unlock()

	util.Infof("APM enabled for app: %s", a.cfg.AppName)
	return nil
}

// Stop shuts down the New Relic agent.
func (a *Agent) Stop() {
	a.mu.RLock()
	app := a.app
	a.mu.RUnlock()

	if app != nil {
		util.Info("Shutting down APM agent")
		app.Shutdown(10 * time.Second)
	}
}

// Application returns the underlying New Relic application (for middleware).
func (a *Agent) Application() *newrelic.Application {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.app
}

// IsEnabled returns true if APM is enabled and connected.
func (a *Agent) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.app != nil
}

// StartTransaction starts a new New Relic transaction.
func (a *Agent) StartTransaction(name string) *newrelic.Transaction {
	a.mu.RLock()
	app := a.app
	a.mu.RUnlock()

	if app == nil {
		return nil
	}
	return app.StartTransaction(name)
}

// RecordCustomEvent records a custom event.
func (a *Agent) RecordCustomEvent(eventType string, params map[string]interface{}) {
	a.mu.RLock()
	app := a.app
	a.mu.RUnlock()

	if app != nil {
		app.RecordCustomEvent(eventType, params)
	}
}

// RecordCustomMetric records a custom metric.
func (a *Agent) RecordCustomMetric(name string, value float64) {
	a.mu.RLock()
	app := a.app
	a.mu.RUnlock()

	if app != nil {
		app.RecordCustomMetric(name, value)
	}
}

// NoticeError records an error against a transaction.
func (a *Agent) NoticeError(txn *newrelic.Transaction, err error) {
	if txn != nil && err != nil {
		txn.NoticeError(err)
	}
}

// NewContext adds a transaction to context.
func (a *Agent) NewContext(ctx context.Context, txn *newrelic.Transaction) context.Context {
	if txn == nil {
		return ctx
	}
	return newrelic.NewContext(ctx, txn)
}

// FromContext retrieves a transaction from context.
func (a *Agent) FromContext(ctx context.Context) *newrelic.Transaction {
	return newrelic.FromContext(ctx)
}

// RecordHashComputed records a single VerusHash computation: its solution
// version, the CLHash variant it dispatched to, and wall-clock latency.
func (a *Agent) RecordHashComputed(version string, variant string, durationMS float64) {
	a.RecordCustomEvent("HashComputed", map[string]interface{}{
		"version":     version,
		"variant":     variant,
		"duration_ms": durationMS,
	})
	a.RecordCustomMetric("Custom/Hash/DurationMS", durationMS)
}

// RecordNonCanonicalDetected records a rejected header carrying
// non-canonical PBaaS sub-header data.
func (a *Agent) RecordNonCanonicalDetected(chainID string) {
	a.RecordCustomEvent("NonCanonicalDetected", map[string]interface{}{
		"chain_id": chainID,
	})
}

// RecordActivationReached records a solution version becoming active.
func (a *Agent) RecordActivationReached(version string, height int64) {
	a.RecordCustomEvent("ActivationReached", map[string]interface{}{
		"version": version,
		"height":  height,
	})
}

// UpdateNodeMetrics updates upstream node health metrics.
func (a *Agent) UpdateNodeMetrics(healthy bool, height int64) {
	h := 0.0
	if healthy {
		h = 1.0
	}
	a.RecordCustomMetric("Custom/Node/Healthy", h)
	a.RecordCustomMetric("Custom/Node/Height", float64(height))
}
