package fetch

import (
	"context"
	"covidwatch/internal/components/assert"
	"covidwatch/internal/components/telemetry"
	"fmt"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const (
	report_client_get  = "client.get"
	report_client_dump = "client.dump"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type ClientOptions struct {
	UserAgent string
	Timeout   time.Duration
	// CloudflareBypass swaps the transport for one that mimics a browser TLS
	// handshake, most public dashboards sit behind cloudflare.
	CloudflareBypass bool
	// Dump receives every response when set, for debugging extractors against
	// live pages.
	Dump DumpOutput
}

// Client is the resty implementation of Fetcher.
type Client struct {
	http *resty.Client
	tel  telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) Client {
	assert.NotNil("telemetry", tel)
	tel = telemetry.NewScopedAPI("fetch", tel)

	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second * 30
	}

	httpClient := resty.New()
	httpClient.SetHeader("user-agent", opts.UserAgent)
	httpClient.SetTimeout(opts.Timeout)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	telemetry.InstrumentResty(httpClient, tel, "covidwatch/fetch/http")
	if opts.Dump != nil {
		instrumentDump(httpClient, opts.Dump)
	}

	return Client{http: httpClient, tel: tel}
}

func (c Client) Get(ctx context.Context, url string) ([]byte, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		status := 0
		if res != nil && res.RawResponse != nil {
			status = res.StatusCode()
		}
		c.tel.ReportBroken(report_client_get, fmt.Errorf("fetch: %w", err), url)
		return nil, NewStatusError(url, status, err)
	}
	if res.IsError() {
		err := fmt.Errorf("unexpected response: %s", res.Status())
		c.tel.ReportWarning(report_client_get, err, url)
		return nil, NewStatusError(url, res.StatusCode(), err)
	}
	return res.Body(), nil
}
