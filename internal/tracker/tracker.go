// Package tracker runs configured sources through their extractors and records
// the results in the source's store.
package tracker

import (
	"context"
	"covidwatch/internal/components/assert"
	"covidwatch/internal/components/telemetry"
	"covidwatch/internal/covid"
	"covidwatch/internal/fetch"
	"covidwatch/internal/store"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("covidwatch/tracker")
var extractionCounter, _ = meter.Int64Counter(
	"extractions",
	metric.WithDescription("extractions by source and outcome"),
)

const (
	report_tracker_run    = "tracker.run"
	report_tracker_source = "tracker.source"
)

// Source is one configured extraction, its numbers are recorded under ID in the
// store named Store.
type Source struct {
	Store   string `json:"store"`
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Locator string `json:"locator"`
}

func (s Source) String() string {
	return fmt.Sprintf("%s/%s (%s %s)", s.Store, s.ID, s.Kind, s.Locator)
}

// Factory builds the extractor for a source kind, sources.Factory implements it.
type Factory interface {
	New(kind, locator string) (covid.Extractor, error)
}

type Tracker struct {
	registry *store.Registry
	factory  Factory
	tel      telemetry.API
}

func New(registry *store.Registry, factory Factory, tel telemetry.API) Tracker {
	assert.NotNil("registry", registry)
	assert.NotNil("factory", factory)
	assert.NotNil("telemetry", tel)

	return Tracker{
		registry: registry,
		factory:  factory,
		tel:      telemetry.NewScopedAPI("tracker", tel),
	}
}

// Result is the outcome of one source.
type Result struct {
	Source  Source
	Numbers covid.Numbers
	Created bool
	Err     error
}

// RunSource extracts one source and upserts its record.
func (t Tracker) RunSource(ctx context.Context, source Source) Result {
	result := Result{Source: source}

	extractor, err := t.factory.New(source.Kind, source.Locator)
	if err != nil {
		result.Err = fmt.Errorf("%s: %w", source, err)
		return result
	}

	numbers, err := extractor.Execute(ctx)
	if err != nil {
		result.Err = fmt.Errorf("%s: extract: %w", source, err)
		return result
	}
	result.Numbers = numbers

	s, err := t.registry.Get(source.Store)
	if err != nil {
		result.Err = fmt.Errorf("%s: %w", source, err)
		return result
	}
	result.Created, err = s.Upsert(source.ID, numbers)
	if err != nil {
		result.Err = fmt.Errorf("%s: %w", source, err)
		return result
	}
	return result
}

// Run processes sources one after another in order. A failing source does not
// stop the run, all failures are joined into the returned error.
func (t Tracker) Run(ctx context.Context, sources []Source) ([]Result, error) {
	results := make([]Result, 0, len(sources))
	var errList []error
	failed := 0

	for _, source := range sources {
		if ctx.Err() != nil {
			errList = append(errList, ctx.Err())
			break
		}

		result := t.RunSource(ctx, source)
		results = append(results, result)

		outcome := "updated"
		switch {
		case result.Err != nil:
			outcome = "failed"
			failed++
			errList = append(errList, result.Err)
			t.tel.ReportBroken(report_tracker_source, result.Err, fetch.StatusCode(result.Err))
		case result.Created:
			outcome = "created"
		}
		t.tel.ReportDebug("source done", source.String(), outcome, result.Numbers.String())

		extractionCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("store", source.Store),
			attribute.String("kind", source.Kind),
			attribute.String("outcome", outcome),
		))
	}

	for _, id := range t.registry.Identifiers() {
		s, err := t.registry.Get(id)
		if err != nil {
			continue
		}
		t.tel.ReportCount(fmt.Sprintf("records.%s", id), int64(s.Count()))
	}

	if failed > 0 {
		t.tel.ReportWarning(report_tracker_run, fmt.Errorf("%d of %d sources failed", failed, len(sources)))
	}
	if len(results) < len(sources) {
		t.tel.ReportWarning(report_tracker_run, fmt.Errorf("run stopped after %d of %d sources", len(results), len(sources)), ctx.Err())
	}
	err := errors.Join(errList...)
	return results, err
}
