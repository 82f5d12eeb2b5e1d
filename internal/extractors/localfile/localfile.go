// Package localfile reads counters from a json5 document on disk, for sources
// that are exported by hand or mirrored by another tool.
//
//	{
//		cases: "1,234",
//		deaths: 56,
//		recovered: 78,
//		// active is derived when omitted
//	}
package localfile

import (
	"context"
	"covidwatch/internal/components/assert"
	"covidwatch/internal/components/telemetry"
	"covidwatch/internal/covid"
	"covidwatch/internal/extractors/keyed"
	"covidwatch/internal/fetch"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/titanous/json5"
)

const (
	report_extractor_execute = "extractor.execute"
)

type Extractor struct {
	Path string
	Keys keyed.Keys

	tel telemetry.API
}

func New(locator string, tel telemetry.API) Extractor {
	assert.NotNil("telemetry", tel)
	return Extractor{
		Path: filepath.Clean(locator),
		Keys: keyed.DefaultKeys,
		tel:  telemetry.NewScopedAPI("localfile", tel),
	}
}

// read is the fetch step, failures get the status an http server would have
// answered with.
func (e Extractor) read() ([]byte, error) {
	raw, err := os.ReadFile(e.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fetch.NewStatusError(e.Path, http.StatusNotFound, err)
	}
	if errors.Is(err, fs.ErrPermission) {
		return nil, fetch.NewStatusError(e.Path, http.StatusForbidden, err)
	}
	if err != nil {
		return nil, fetch.NewStatusError(e.Path, 0, err)
	}
	return raw, nil
}

func (e Extractor) Execute(ctx context.Context) (covid.Numbers, error) {
	if err := ctx.Err(); err != nil {
		return covid.Numbers{}, fetch.NewStatusError(e.Path, 0, err)
	}

	raw, err := e.read()
	if err != nil {
		e.tel.ReportBroken(report_extractor_execute, err, e.Path)
		return covid.Numbers{}, err
	}

	values := map[string]any{}
	err = json5.Unmarshal(raw, &values)
	if err != nil {
		e.tel.ReportWarning(report_extractor_execute, fmt.Errorf("decode json5: %w", err), e.Path)
		return covid.Numbers{}, nil
	}

	return keyed.Map(values, e.Keys), nil
}
