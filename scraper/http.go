package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const fetchTimeout = 10 * time.Second

const userAgent = "Mozilla/5.0 (compatible; TechRadar/1.0)"

// httpClient is shared by all adapters. The client-level timeout is the
// per-request ceiling; exceeding it aborts the request and counts as a
// failure for retry purposes.
var httpClient = &http.Client{Timeout: fetchTimeout}

// getJSON fetches url and decodes the JSON response into v.
func getJSON(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := fetchBody(ctx, http.MethodGet, url, headers, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

// postJSON sends payload as JSON and decodes the response into v.
func postJSON(ctx context.Context, url string, headers map[string]string, payload, v any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if headers == nil {
		headers = map[string]string{}
	}
	headers["Content-Type"] = "application/json"
	body, err := fetchBody(ctx, http.MethodPost, url, headers, raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

// getHTML fetches url and returns the raw response body.
func getHTML(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	return fetchBody(ctx, http.MethodGet, url, headers, nil)
}

func fetchBody(ctx context.Context, method, url string, headers map[string]string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

// parseTime parses the timestamp formats upstream APIs actually return.
// Returns nil rather than an error: a missing published date is fine.
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, time.RFC1123, time.RFC1123Z} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
