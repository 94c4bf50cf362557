// Package orchestrator drives bulk operations across registered platform
// modules: enable, disable and test-connection fan out concurrently and
// aggregate per-module outcomes. One module's failure (or panic) never
// aborts the others.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/onboardhub/onboardhub/observability"
	"github.com/onboardhub/onboardhub/pkg/errors"
	"github.com/onboardhub/onboardhub/pkg/logger"
	"github.com/onboardhub/onboardhub/pkg/platform"
	"github.com/onboardhub/onboardhub/pkg/store"
)

// Orchestrator fans provisioning operations out across the registry.
type Orchestrator struct {
	registry  *platform.Registry
	logger    logger.Logger
	store     store.Store
	telemetry *observability.TelemetryProvider
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for bulk operation reporting.
func WithLogger(log logger.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.logger = log
		}
	}
}

// WithStore attaches a persistence collaborator. When set, bulk
// operations write audit log entries and enable/disable persist the
// affected platform configuration records.
func WithStore(s store.Store) Option {
	return func(o *Orchestrator) {
		o.store = s
	}
}

// WithTelemetry attaches a telemetry provider for spans and metrics.
func WithTelemetry(tp *observability.TelemetryProvider) Option {
	return func(o *Orchestrator) {
		o.telemetry = tp
	}
}

// New creates an orchestrator over a registry.
func New(registry *platform.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		logger:   logger.Discard,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// BulkResult aggregates per-module outcomes of a bulk operation.
type BulkResult struct {
	// Results holds one entry per requested platform id.
	Results map[string]*platform.Response[*platform.Status] `json:"results"`

	// Succeeded and Failed list the partitioned ids, sorted.
	Succeeded []string `json:"succeeded"`
	Failed    []string `json:"failed"`
}

// Summary renders the "N succeeded, M failed" line for callers.
func (r *BulkResult) Summary() string {
	return fmt.Sprintf("%d succeeded, %d failed", len(r.Succeeded), len(r.Failed))
}

// TestAll invokes TestConnection on each requested module independently
// and collects a map with one entry per requested id. Passing no ids
// tests every registered module.
func (o *Orchestrator) TestAll(ctx context.Context, ids ...string) map[string]*platform.Response[*platform.Status] {
	if len(ids) == 0 {
		ids = o.registry.IDs()
	}
	return o.fanOut(ctx, ids, "test_connection", func(ctx context.Context, p platform.Platform) *platform.Response[*platform.Status] {
		return p.TestConnection(ctx)
	})
}

// EnableAll initializes each platform with its supplied configuration.
// Every requested id is processed; individual failures are reported in
// the result rather than aborting the batch.
func (o *Orchestrator) EnableAll(ctx context.Context, configs map[string]platform.Config) *BulkResult {
	ids := make([]string, 0, len(configs))
	for id := range configs {
		ids = append(ids, id)
	}

	results := o.fanOut(ctx, ids, "enable", func(ctx context.Context, p platform.Platform) *platform.Response[*platform.Status] {
		return p.Initialize(ctx, configs[p.Metadata().ID])
	})

	result := partition(results)
	o.persistConfigs(ctx, configs, result)
	o.logger.Info("bulk enable finished", "summary", result.Summary())
	return result
}

// DisableAll closes each requested module, returning it to the
// uninitialized state.
func (o *Orchestrator) DisableAll(ctx context.Context, ids ...string) *BulkResult {
	if len(ids) == 0 {
		ids = o.registry.IDs()
	}

	results := o.fanOut(ctx, ids, "disable", func(ctx context.Context, p platform.Platform) *platform.Response[*platform.Status] {
		if err := p.Close(); err != nil {
			return platform.Fail[*platform.Status](errors.ErrUnclassified, err.Error())
		}
		return platform.OK(&platform.Status{
			State:       platform.ConnectionInactive,
			Message:     "platform disabled",
			LastChecked: time.Now(),
		})
	})

	result := partition(results)
	o.persistDisabled(ctx, result)
	o.logger.Info("bulk disable finished", "summary", result.Summary())
	return result
}

// StatusAll derives the live status of each requested module.
func (o *Orchestrator) StatusAll(ctx context.Context, ids ...string) map[string]*platform.Status {
	if len(ids) == 0 {
		ids = o.registry.IDs()
	}

	statuses := make(map[string]*platform.Status, len(ids))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			var status *platform.Status
			p, err := o.registry.Get(id)
			if err != nil {
				status = &platform.Status{
					State:       platform.ConnectionError,
					Message:     err.Error(),
					LastChecked: time.Now(),
				}
			} else {
				status = p.Status(ctx)
			}

			mu.Lock()
			statuses[id] = status
			mu.Unlock()
		}(id)
	}

	wg.Wait()
	return statuses
}

// fanOut runs op against every requested id concurrently. Each module's
// outcome is isolated: unknown ids yield a PLATFORM_NOT_FOUND failure
// entry and panics are captured as OPERATION_PANICKED failures.
func (o *Orchestrator) fanOut(ctx context.Context, ids []string, operation string, op func(context.Context, platform.Platform) *platform.Response[*platform.Status]) map[string]*platform.Response[*platform.Status] {
	results := make(map[string]*platform.Response[*platform.Status], len(ids))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			resp := o.runOne(ctx, id, operation, op)
			mu.Lock()
			results[id] = resp
			mu.Unlock()
		}(id)
	}

	wg.Wait()
	o.auditResults(ctx, operation, results)
	return results
}

func (o *Orchestrator) runOne(ctx context.Context, id, operation string, op func(context.Context, platform.Platform) *platform.Response[*platform.Status]) (resp *platform.Response[*platform.Status]) {
	start := time.Now()

	var span trace.Span
	if o.telemetry != nil {
		ctx, span = o.telemetry.TracePlatformOperation(ctx, id, operation)
	}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("platform operation panicked", "platform", id, "operation", operation, "panic", r)
			resp = platform.Fail[*platform.Status](errors.ErrOperationPanicked,
				fmt.Sprintf("operation %s panicked: %v", operation, r))
		}
		o.record(ctx, id, operation, time.Since(start), resp)
		if span != nil {
			if resp != nil && !resp.Success {
				o.telemetry.SetSpanError(span, errors.New(resp.Code, resp.Error))
			} else {
				o.telemetry.SetSpanSuccess(span)
			}
			span.End()
		}
	}()

	p, err := o.registry.Get(id)
	if err != nil {
		return platform.FailErr[*platform.Status](err)
	}
	return op(ctx, p)
}

// record emits telemetry for one per-module outcome.
func (o *Orchestrator) record(ctx context.Context, id, operation string, duration time.Duration, resp *platform.Response[*platform.Status]) {
	if o.telemetry == nil || resp == nil {
		return
	}
	if resp.Success {
		o.telemetry.RecordProvisionSuccess(ctx, id, operation, duration)
	} else {
		o.telemetry.RecordProvisionFailure(ctx, id, operation, duration, string(resp.Code))
	}
}

// auditResults writes one audit log entry per module outcome when a
// store is attached. Audit failures are logged, never surfaced to the
// bulk caller.
func (o *Orchestrator) auditResults(ctx context.Context, operation string, results map[string]*platform.Response[*platform.Status]) {
	if o.store == nil {
		return
	}
	for id, resp := range results {
		entry := map[string]any{
			"platform_id": id,
			"operation":   operation,
			"success":     resp.Success,
		}
		if !resp.Success {
			entry["error"] = resp.Error
			entry["error_code"] = string(resp.Code)
		}
		if _, err := o.store.Create(ctx, store.EntityAuditLog, entry); err != nil {
			o.logger.Warn("failed to write audit log entry", "platform", id, "error", err)
		}
	}
}

// persistConfigs stores the configuration records for successfully
// enabled platforms.
func (o *Orchestrator) persistConfigs(ctx context.Context, configs map[string]platform.Config, result *BulkResult) {
	if o.store == nil {
		return
	}
	for _, id := range result.Succeeded {
		data := map[string]any{
			"platform_id": id,
			"config":      map[string]any(configs[id]),
			"enabled":     true,
		}
		if _, err := o.store.Create(ctx, store.EntityPlatformConfigs, data); err != nil {
			o.logger.Warn("failed to persist platform config", "platform", id, "error", err)
		}
	}
}

// persistDisabled stores a disabled marker record for each successfully
// disabled platform.
func (o *Orchestrator) persistDisabled(ctx context.Context, result *BulkResult) {
	if o.store == nil {
		return
	}
	for _, id := range result.Succeeded {
		data := map[string]any{
			"platform_id": id,
			"enabled":     false,
		}
		if _, err := o.store.Create(ctx, store.EntityPlatformConfigs, data); err != nil {
			o.logger.Warn("failed to persist platform config", "platform", id, "error", err)
		}
	}
}

func partition(results map[string]*platform.Response[*platform.Status]) *BulkResult {
	result := &BulkResult{Results: results}
	for id, resp := range results {
		if resp.Success {
			result.Succeeded = append(result.Succeeded, id)
		} else {
			result.Failed = append(result.Failed, id)
		}
	}
	sort.Strings(result.Succeeded)
	sort.Strings(result.Failed)
	return result
}
