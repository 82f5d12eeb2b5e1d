package fetch

import (
	"context"
	"covidwatch/internal/components/telemetry"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSecureURL(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "http://www.worldometers.info/coronavirus/", expected: "https://www.worldometers.info/coronavirus/"},
		{input: "https://www.worldometers.info/coronavirus/", expected: "https://www.worldometers.info/coronavirus/"},
		{input: "//www.worldometers.info/coronavirus/", expected: "https://www.worldometers.info/coronavirus/"},
		{input: "www.worldometers.info/coronavirus/", expected: "https://www.worldometers.info/coronavirus/"},
		{input: "  disease.sh/v3/covid-19/all ", expected: "https://disease.sh/v3/covid-19/all"},
		{input: "ftp://example.com/x", expected: "ftp://example.com/x"},
	}
	for _, row := range table {
		require.Equal(t, row.expected, SecureURL(row.input))
	}
}

func TestStatusCode(t *testing.T) {
	require.Equal(t, 0, StatusCode(nil))
	require.Equal(t, DefaultStatusCode, StatusCode(errors.New("boom")))
	require.Equal(t, 404, StatusCode(NewStatusError("u", 404, errors.New("not found"))))
	require.Equal(t, DefaultStatusCode, StatusCode(NewStatusError("u", 0, errors.New("dial"))))

	wrapped := fmt.Errorf("extract: %w", NewStatusError("u", 503, errors.New("unavailable")))
	require.Equal(t, 503, StatusCode(wrapped))

	cause := errors.New("cause")
	require.ErrorIs(t, NewStatusError("u", 0, cause), cause)
}

func newTestClient() Client {
	return NewClient(ClientOptions{Timeout: time.Second * 5}, telemetry.NewSlogAPI(nil))
}

func TestClientGet(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("user-agent")
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte("<html>ok</html>"))
		case "/gone":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer server.Close()

	client := newTestClient()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	body, err := client.Get(ctx, server.URL+"/ok")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "<html>ok</html>", string(body))
	require.Equal(t, DefaultUserAgent, userAgent)

	_, err = client.Get(ctx, server.URL+"/gone")
	require.Error(t, err)
	require.Equal(t, http.StatusNotFound, StatusCode(err))

	_, err = client.Get(ctx, server.URL+"/other")
	require.Equal(t, http.StatusBadGateway, StatusCode(err))
}

func TestClientGetUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := newTestClient()
	_, err := client.Get(context.Background(), url)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, DefaultStatusCode, statusErr.StatusCode)
	require.Equal(t, url, statusErr.Url)
}
