package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// responses from token/profile endpoints are small; 1 MiB is generous.
const maxResponseBytes = 1 << 20

func defaultHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// postForm sends a form-encoded POST (the content type every provider's
// token endpoint documents) and returns status and body.
func postForm(ctx context.Context, client *http.Client, endpoint string, form url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

// getJSON fetches a URL with optional bearer auth and decodes into dst.
func getJSON(ctx context.Context, client *http.Client, endpoint, bearer string, dst any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, err
	}
	if resp.StatusCode/100 != 2 {
		return resp.StatusCode, &ExchangeError{StatusCode: resp.StatusCode, Details: string(body)}
	}
	return resp.StatusCode, json.Unmarshal(body, dst)
}

// decodeJSONBody decodes an HTTP response body into dst with a size cap.
func decodeJSONBody(resp *http.Response, dst any) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}

func formatShopID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// parseTokenResponse decodes the provider token payload, keeping the
// verbatim body in Raw.
func parseTokenResponse(status int, body []byte) (*TokenResponse, error) {
	if status/100 != 2 {
		return nil, &ExchangeError{StatusCode: status, Details: string(body)}
	}
	var tr TokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, err
	}
	tr.Raw = json.RawMessage(body)
	return &tr, nil
}
