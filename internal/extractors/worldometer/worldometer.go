// Package worldometer scrapes the main counters of a worldometers.info
// coronavirus page.
package worldometer

import (
	"context"
	"covidwatch/internal/components/assert"
	"covidwatch/internal/components/telemetry"
	"covidwatch/internal/covid"
	"covidwatch/internal/fetch"
	"covidwatch/pkg/htmlutil"
	"covidwatch/pkg/numutil"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("covidwatch/extractors/worldometer")

const (
	report_extractor_execute = "extractor.execute"
)

// counterSelector matches the three headline counters, in page order:
// cases, deaths, recoveries.
const counterSelector = ".maincounter-number"

const (
	casesIndex      = 0
	deathsIndex     = 1
	recoveriesIndex = 2
)

type Extractor struct {
	Url string

	fetcher fetch.Fetcher
	tel     telemetry.API
}

// New builds an extractor for the page at locator, which is coerced into an
// https url.
func New(locator string, fetcher fetch.Fetcher, tel telemetry.API) Extractor {
	assert.NotNil("fetcher", fetcher)
	assert.NotNil("telemetry", tel)

	return Extractor{
		Url:     fetch.SecureURL(locator),
		fetcher: fetcher,
		tel:     telemetry.NewScopedAPI("worldometer", tel),
	}
}

func (e Extractor) Execute(ctx context.Context) (covid.Numbers, error) {
	ctx, span := tracer.Start(ctx, "Execute")
	defer span.End()
	span.SetAttributes(attribute.String("url", e.Url))

	raw, err := e.fetcher.Get(ctx, e.Url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch page")
		e.tel.ReportBroken(report_extractor_execute, err, e.Url)
		return covid.Numbers{}, err
	}

	doc, err := htmlutil.Load(raw)
	if err != nil {
		// unparsable markup is treated like a page without counters
		e.tel.ReportWarning(report_extractor_execute, fmt.Errorf("parse html: %w", err), e.Url)
		return covid.Numbers{}, nil
	}

	cases := numutil.Sanitize(htmlutil.TextAt(doc, counterSelector, casesIndex))
	deaths := numutil.Sanitize(htmlutil.TextAt(doc, counterSelector, deathsIndex))
	recoveries := numutil.Sanitize(htmlutil.TextAt(doc, counterSelector, recoveriesIndex))
	active := cases.Sub(deaths).Sub(recoveries)

	numbers := covid.Numbers{
		Cases:        numutil.Neutralize(cases),
		Deaths:       numutil.Neutralize(deaths),
		Hospitalized: 0,
		Recoveries:   numutil.Neutralize(recoveries),
		Active:       numutil.Neutralize(active),
	}
	e.tel.ReportDebug("extracted", e.Url, numbers.String())

	return numbers, nil
}
