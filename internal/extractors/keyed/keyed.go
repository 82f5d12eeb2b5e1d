// Package keyed maps sources that report counters by key (json apis, local
// files) into covid.Numbers.
package keyed

import (
	"covidwatch/internal/covid"
	"covidwatch/pkg/numutil"
)

// Keys lists, per counter, the keys a value may be reported under. The first
// key present wins.
type Keys struct {
	Cases        []string
	Deaths       []string
	Hospitalized []string
	Recoveries   []string
	Active       []string
}

// DefaultKeys matches the disease.sh response shape and the local file format.
var DefaultKeys = Keys{
	Cases:        []string{"cases"},
	Deaths:       []string{"deaths"},
	Hospitalized: []string{"hospitalized"},
	Recoveries:   []string{"recovered", "recoveries"},
	Active:       []string{"active"},
}

func lookup(values map[string]any, keys []string) (numutil.Count, bool) {
	for _, k := range keys {
		v, ok := values[k]
		if ok {
			return numutil.FromAny(v), true
		}
	}
	return numutil.Missing(), false
}

// Map assembles Numbers out of decoded values. Absent counters are 0, an
// absent active count is derived as cases - deaths - recoveries.
func Map(values map[string]any, keys Keys) covid.Numbers {
	cases, _ := lookup(values, keys.Cases)
	deaths, _ := lookup(values, keys.Deaths)
	hospitalized, _ := lookup(values, keys.Hospitalized)
	recoveries, _ := lookup(values, keys.Recoveries)
	active, found := lookup(values, keys.Active)
	if !found {
		active = cases.Sub(deaths).Sub(recoveries)
	}

	return covid.Numbers{
		Cases:        numutil.Neutralize(cases),
		Deaths:       numutil.Neutralize(deaths),
		Hospitalized: numutil.Neutralize(hospitalized),
		Recoveries:   numutil.Neutralize(recoveries),
		Active:       numutil.Neutralize(active),
	}
}
