package fetch

import (
	"covidwatch/internal/components/telemetry"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// DumpOutput receives a plain text rendition of every exchange a Client makes.
type DumpOutput interface {
	Write(id string, contents string)
}

// FilesystemOutput writes each exchange to its own file in a directory.
type FilesystemOutput struct {
	directory string
	tel       telemetry.API
}

// dumpMarker marks a directory as owned by a FilesystemOutput.
const dumpMarker = ".covidwatch-dump"

var ErrDumpDirInUse = errors.New("dump directory holds files it did not write")

// NewFilesystemOutput prepares dir for a fresh dump. A missing or empty dir is
// created and marked, a marked dir has its previous dump files removed. Any
// other dir is refused with ErrDumpDirInUse and left untouched.
func NewFilesystemOutput(dir string, tel telemetry.API) (FilesystemOutput, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		err = os.MkdirAll(dir, 0755)
		if err != nil {
			return FilesystemOutput{}, err
		}
	} else if err != nil {
		return FilesystemOutput{}, err
	}

	marked := slices.ContainsFunc(entries, func(e os.DirEntry) bool {
		return e.Name() == dumpMarker
	})
	if len(entries) > 0 && !marked {
		return FilesystemOutput{}, fmt.Errorf("%w: %s", ErrDumpDirInUse, dir)
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".txt" {
			continue
		}
		err = os.Remove(filepath.Join(dir, e.Name()))
		if err != nil {
			return FilesystemOutput{}, err
		}
	}
	if !marked {
		err = os.WriteFile(filepath.Join(dir, dumpMarker), nil, 0644)
		if err != nil {
			return FilesystemOutput{}, err
		}
	}

	return FilesystemOutput{directory: dir, tel: telemetry.NewScopedAPI("fetch", tel)}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id+".txt"), []byte(contents), 0644)
	if err != nil {
		o.tel.ReportWarning(report_client_dump, err, id)
	}
}

func formatHeaders(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var out strings.Builder
	for _, k := range keys {
		for _, v := range headers[k] {
			fmt.Fprintf(&out, "%s: %s\n", k, v)
		}
	}
	return strings.TrimSuffix(out.String(), "\n")
}

// 1: request method
// 2: request url
// 3: request headers in ("Key: Value" format)
// 4: response status
// 5: response headers in ("Key: Value" format)
// 6: response body
const exchangeTemplate = `---- REQUEST ----

%s %s

%s

---- RESPONSE ----

%s

%s

%s`

func formatExchange(res *resty.Response) string {
	var requestHeaders http.Header
	if res.Request.RawRequest != nil {
		requestHeaders = res.Request.RawRequest.Header
	}
	return fmt.Sprintf(
		exchangeTemplate,
		res.Request.Method, res.Request.URL,
		formatHeaders(requestHeaders),
		res.Status(),
		formatHeaders(res.Header()),
		res.String(),
	)
}

// instrumentDump writes every response the client receives to output, ids
// count up from 1 in the order responses arrive.
func instrumentDump(client *resty.Client, output DumpOutput) {
	var counter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := strconv.FormatUint(atomic.AddUint64(&counter, 1), 10)
		output.Write(id, formatExchange(res))
		return nil
	})
}
