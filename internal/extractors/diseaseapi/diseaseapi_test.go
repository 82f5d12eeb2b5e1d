package diseaseapi

import (
	"context"
	"covidwatch/internal/components/telemetry"
	"covidwatch/internal/covid"
	"covidwatch/internal/fetch"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type staticFetcher struct {
	body string
	err  error
}

func (f staticFetcher) Get(context.Context, string) ([]byte, error) {
	return []byte(f.body), f.err
}

func TestExecute(t *testing.T) {
	table := []struct {
		name     string
		body     string
		expected covid.Numbers
	}{
		{
			name:     "global",
			body:     `{"updated":1700000000000,"cases":704753890,"todayCases":0,"deaths":7010681,"recovered":675619811,"active":22123398,"critical":34794}`,
			expected: covid.Numbers{Cases: 704753890, Deaths: 7010681, Recoveries: 675619811, Active: 22123398},
		},
		{
			name:     "active missing",
			body:     `{"cases":100,"deaths":10,"recovered":50}`,
			expected: covid.Numbers{Cases: 100, Deaths: 10, Recoveries: 50, Active: 40},
		},
		{
			name:     "array response",
			body:     `[{"country":"USA","cases":10,"deaths":1,"recovered":2,"active":7},{"country":"Italy","cases":99}]`,
			expected: covid.Numbers{Cases: 10, Deaths: 1, Recoveries: 2, Active: 7},
		},
		{
			name:     "hospitalized reported",
			body:     `{"cases":"1,234","deaths":"56","hospitalized":12,"recovered":"78"}`,
			expected: covid.Numbers{Cases: 1234, Deaths: 56, Hospitalized: 12, Recoveries: 78, Active: 1100},
		},
		{
			name:     "exact past 2^53",
			body:     `{"cases":9007199254740993,"deaths":1,"recovered":0}`,
			expected: covid.Numbers{Cases: 9007199254740993, Deaths: 1, Active: 9007199254740992},
		},
		{
			name:     "out of int64 range",
			body:     `{"cases":12345678901234567890,"deaths":"12,345,678,901,234,567,890","recovered":1}`,
			expected: covid.Numbers{Recoveries: 1},
		},
		{
			name:     "not json",
			body:     `<html>maintenance</html>`,
			expected: covid.Numbers{},
		},
		{
			name:     "empty array",
			body:     `[]`,
			expected: covid.Numbers{},
		},
	}

	for _, row := range table {
		e := New("disease.sh/v3/covid-19/all", staticFetcher{body: row.body}, telemetry.NewSlogAPI(nil))
		require.Equal(t, "https://disease.sh/v3/covid-19/all", e.Url)

		numbers, err := e.Execute(context.Background())
		require.NoError(t, err, row.name)
		require.Equal(t, row.expected, numbers, row.name)
	}
}

func TestExecuteFetchFailure(t *testing.T) {
	e := New("disease.sh/v3/covid-19/all", staticFetcher{
		err: fetch.NewStatusError("https://disease.sh/v3/covid-19/all", 429, errors.New("too many requests")),
	}, telemetry.NewSlogAPI(nil))

	_, err := e.Execute(context.Background())
	require.Error(t, err)
	require.Equal(t, 429, fetch.StatusCode(err))
}

func TestExecuteOverHttp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{"cases":3,"deaths":1,"recovered":1,"active":1}`))
	}))
	defer server.Close()

	tel := telemetry.NewSlogAPI(nil)
	e := New(server.URL, fetch.NewClient(fetch.ClientOptions{Timeout: time.Second * 5}, tel), tel)
	e.Url = server.URL + "/v3/covid-19/all"

	numbers, err := e.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, covid.Numbers{Cases: 3, Deaths: 1, Recoveries: 1, Active: 1}, numbers)
}
