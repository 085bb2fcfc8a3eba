// Package syncclient uploads locally extracted usage records to a remote
// screenwatch server.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/screenwatch/screenwatch/internal/api"
	"github.com/screenwatch/screenwatch/internal/usage"
)

// ErrNetwork marks transport-level upload failures. A failed attempt is not
// retried automatically; the caller re-invokes the sync.
var ErrNetwork = errors.New("upload transport failed")

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// Upload POSTs records to /upload and returns the server's tally. The server
// deduplicates, so overlapping windows are safe to resend.
func (c *Client) Upload(ctx context.Context, records []usage.Record) (api.UploadResponse, error) {
	payload, err := json.Marshal(api.UploadRequest{Records: records})
	if err != nil {
		return api.UploadResponse{}, fmt.Errorf("syncclient: marshal upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", bytes.NewReader(payload))
	if err != nil {
		return api.UploadResponse{}, fmt.Errorf("syncclient: build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return api.UploadResponse{}, fmt.Errorf("syncclient: %w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return api.UploadResponse{}, fmt.Errorf("syncclient: %w: read response: %v", ErrNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		return api.UploadResponse{}, fmt.Errorf("syncclient: upload rejected: HTTP %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out api.UploadResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return api.UploadResponse{}, fmt.Errorf("syncclient: decode upload response: %w", err)
	}
	return out, nil
}
