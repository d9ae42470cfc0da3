package restyutil

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// DumpExchanges writes every request/response pair the client sees to the
// given output, numbered in request order. Used by the scrape debug flow to
// inspect what the rescue sites actually returned.
func DumpExchanges(client *resty.Client, output InstrumentOutput) {
	if output == nil {
		return
	}

	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := strconv.FormatUint(atomic.AddUint64(&idcounter, 1), 10)
		output.Write(id, formatHttpMessage(res))
		return nil
	})
}

// 1: request method
// 2: request url
// 3: response status
// 4: response headers ("Key: Value" format)
// 5: response body
const messageInfoTemplate = `---- REQUEST ----

%s %s

---- RESPONSE ----

%s

%s

%s`

func formatHttpMessage(res *resty.Response) string {
	var headers strings.Builder
	for k, vals := range res.Header() {
		for _, v := range vals {
			fmt.Fprintf(&headers, "%s: %s\n", k, v)
		}
	}

	return fmt.Sprintf(
		messageInfoTemplate,
		res.Request.Method, res.Request.URL,
		strconv.Itoa(res.StatusCode()),
		strings.TrimRight(headers.String(), "\n"),
		res.String(),
	)
}
