// Package diseaseapi reads counters from a disease.sh style json endpoint,
// e.g. https://disease.sh/v3/covid-19/all or /v3/covid-19/countries/{country}.
package diseaseapi

import (
	"bytes"
	"context"
	"covidwatch/internal/components/assert"
	"covidwatch/internal/components/telemetry"
	"covidwatch/internal/covid"
	"covidwatch/internal/extractors/keyed"
	"covidwatch/internal/fetch"
	"fmt"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("covidwatch/extractors/diseaseapi")

const (
	report_extractor_execute = "extractor.execute"
)

type Extractor struct {
	Url  string
	Keys keyed.Keys

	fetcher fetch.Fetcher
	tel     telemetry.API
}

func New(locator string, fetcher fetch.Fetcher, tel telemetry.API) Extractor {
	assert.NotNil("fetcher", fetcher)
	assert.NotNil("telemetry", tel)

	return Extractor{
		Url:     fetch.SecureURL(locator),
		Keys:    keyed.DefaultKeys,
		fetcher: fetcher,
		tel:     telemetry.NewScopedAPI("diseaseapi", tel),
	}
}

// object picks the counters object out of a response, endpoints queried with
// several countries answer with an array and only the first entry is used.
func object(decoded any) (map[string]any, bool) {
	switch value := decoded.(type) {
	case map[string]any:
		return value, true
	case []any:
		if len(value) == 0 {
			return nil, false
		}
		return object(value[0])
	default:
		return nil, false
	}
}

func (e Extractor) Execute(ctx context.Context) (covid.Numbers, error) {
	ctx, span := tracer.Start(ctx, "Execute")
	defer span.End()
	span.SetAttributes(attribute.String("url", e.Url))

	raw, err := e.fetcher.Get(ctx, e.Url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		e.tel.ReportBroken(report_extractor_execute, err, e.Url)
		return covid.Numbers{}, err
	}

	// numbers stay json.Number so counters past 2^53 are not rounded
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var decoded any
	err = decoder.Decode(&decoded)
	if err != nil {
		e.tel.ReportWarning(report_extractor_execute, fmt.Errorf("decode json: %w", err), e.Url)
		return covid.Numbers{}, nil
	}
	values, ok := object(decoded)
	if !ok {
		e.tel.ReportWarning(report_extractor_execute, fmt.Errorf("response holds no counters object"), e.Url)
		return covid.Numbers{}, nil
	}

	numbers := keyed.Map(values, e.Keys)
	e.tel.ReportDebug("extracted", e.Url, numbers.String())
	return numbers, nil
}
