// Package client holds the REST clients for the storefront's black-box
// collaborators: addresses, store settings, products, coupons and orders.
// All calls go through otelhttp's instrumented client and propagate the
// request id header.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	inHttp "github.com/swadeshika/storefront/internal/http"
	"github.com/swadeshika/storefront/internal/log"
)

func newJSONRequest(
	c context.Context,
	method string,
	url string,
	body interface{},
) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed encoding request body with error=%w", err)
		}
	}
	req, err := http.NewRequestWithContext(c, method, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed creating request to %s with error=%w", url, err)
	}
	req.Header.Add(inHttp.HeaderContentType, inHttp.HeaderValueJson)
	if requestID := log.RequestIDFromContext(c); requestID != "" {
		req.Header.Add(inHttp.HeaderRequestID, requestID)
	}
	return req, nil
}

func do(req *http.Request) (*http.Response, error) {
	return otelhttp.DefaultClient.Do(req)
}
