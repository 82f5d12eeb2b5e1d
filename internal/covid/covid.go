// Package covid holds the canonical counter shape every source is mapped into
// and the contract source extractors implement.
package covid

import (
	"context"
	"fmt"
)

// Numbers is the canonical shape of an extraction. Unknown counters are 0.
// Active may be derived by the extractor and is allowed to go negative when
// upstream data is inconsistent.
type Numbers struct {
	Cases        int64 `json:"cases"`
	Deaths       int64 `json:"deaths"`
	Hospitalized int64 `json:"hospitalized"`
	Recoveries   int64 `json:"recoveries"`
	Active       int64 `json:"active"`
}

func (n Numbers) String() string {
	return fmt.Sprintf(
		"cases=%d deaths=%d hospitalized=%d recoveries=%d active=%d",
		n.Cases, n.Deaths, n.Hospitalized, n.Recoveries, n.Active,
	)
}

// Extractor produces Numbers from one configured source. Only fetch failures
// are returned as errors, counters missing from the source come back as 0.
type Extractor interface {
	Execute(ctx context.Context) (Numbers, error)
}

// Func adapts a plain function to Extractor.
type Func func(ctx context.Context) (Numbers, error)

func (f Func) Execute(ctx context.Context) (Numbers, error) {
	return f(ctx)
}
