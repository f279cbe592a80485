package watch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is an HTTP implementation of both watch backends against the
// payments service: StatusReader via the status read endpoint, StatusStream
// via the SSE events endpoint.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) PaymentStatus(ctx context.Context, externalReference string) (string, error) {
	endpoint := c.baseURL + "/payments/" + url.PathEscape(externalReference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("payment status read failed: status=%d", resp.StatusCode)
	}

	var envelope struct {
		Payment struct {
			Status string `json:"status"`
		} `json:"payment"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", err
	}

	return envelope.Payment.Status, nil
}

// Subscribe opens the SSE stream for the reference and forwards status
// values until the stream ends or cancel is called. Streaming reads cannot
// share the client's per-request timeout, so the stream request uses its own
// transport without one; the Subscriber's hard timeout bounds the wait.
func (c *Client) Subscribe(externalReference string) (<-chan string, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan string, 4)

	go func() {
		defer close(updates)

		endpoint := c.baseURL + "/payments/" + url.PathEscape(externalReference) + "/events"
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return
		}
		req.Header.Set("Accept", "text/event-stream")

		streamClient := &http.Client{Transport: c.client.Transport}
		resp, err := streamClient.Do(req)
		if err != nil {
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}

			var update struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &update); err != nil {
				continue
			}

			select {
			case updates <- update.Status:
			case <-ctx.Done():
				return
			}
		}
	}()

	return updates, cancel
}
