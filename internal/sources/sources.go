package sources

import (
	"covidwatch/internal/components/assert"
	"covidwatch/internal/components/telemetry"
	"covidwatch/internal/covid"
	"covidwatch/internal/extractors/diseaseapi"
	"covidwatch/internal/extractors/localfile"
	"covidwatch/internal/extractors/worldometer"
	"covidwatch/internal/fetch"
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	KindWorldometer = "worldometer"
	KindDiseaseApi  = "diseaseapi"
	KindLocalFile   = "localfile"
)

var ErrUnknownKind = errors.New("unknown source kind")

// constructor builds an extractor for a locator, it must not do any I/O.
type constructor func(locator string, fetcher fetch.Fetcher, tel telemetry.API) covid.Extractor

// Factory picks the extractor implementation for a configured source kind.
type Factory struct {
	fetcher      fetch.Fetcher
	tel          telemetry.API
	constructors map[string]constructor
}

// NewFactory returns a factory knowing the built in kinds.
func NewFactory(fetcher fetch.Fetcher, tel telemetry.API) Factory {
	assert.NotNil("fetcher", fetcher)
	assert.NotNil("telemetry", tel)

	return Factory{
		fetcher: fetcher,
		tel:     tel,
		constructors: map[string]constructor{
			KindWorldometer: func(locator string, fetcher fetch.Fetcher, tel telemetry.API) covid.Extractor {
				return worldometer.New(locator, fetcher, tel)
			},
			KindDiseaseApi: func(locator string, fetcher fetch.Fetcher, tel telemetry.API) covid.Extractor {
				return diseaseapi.New(locator, fetcher, tel)
			},
			KindLocalFile: func(locator string, _ fetch.Fetcher, tel telemetry.API) covid.Extractor {
				return localfile.New(locator, tel)
			},
		},
	}
}

// Kinds returns the registered kinds, sorted.
func (f Factory) Kinds() []string {
	kinds := make([]string, 0, len(f.constructors))
	for k := range f.constructors {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

func (f Factory) New(kind, locator string) (covid.Extractor, error) {
	build, ok := f.constructors[normalizeKind(kind)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownKind, kind, strings.Join(f.Kinds(), ", "))
	}
	if strings.TrimSpace(locator) == "" {
		return nil, fmt.Errorf("source %q: empty locator", kind)
	}
	return build(locator, f.fetcher, f.tel), nil
}

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}
