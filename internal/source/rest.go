package source

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 10 * 1024 * 1024

// doFetch performs one GET request
func (f *Fetcher) doFetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &SourceError{
			Source:    rawURL,
			Operation: "create request",
			Err:       err,
			Retryable: false,
		}
	}
	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, NewSourceError(rawURL, "request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &HTTPError{
			Source:     rawURL,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &SourceError{
			Source:    rawURL,
			Operation: "read response",
			Err:       err,
			Retryable: false,
		}
	}
	return body, nil
}
