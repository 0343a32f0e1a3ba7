// Package ocr is a thin client to an external recognition capability.
// It sends raw PDF bytes and maps the structured response back; the
// recognition engine itself is an opaque collaborator.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// Item is one transaction as recognized by the external capability.
type Item struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Extraction is the structured payload of a successful recognition.
type Extraction struct {
	Items       []Item  `json:"items"`
	Confidence  float64 `json:"confidence"` // 0..1
	BankName    string  `json:"bankName"`
	TotalAmount float64 `json:"totalAmount"`
	IssuedDate  string  `json:"issuedDate,omitempty"` // YYYY-MM-DD
	DueDate     string  `json:"dueDate,omitempty"`    // YYYY-MM-DD
}

// Response is the recognition service's reply envelope.
type Response struct {
	Success  bool        `json:"success"`
	Data     *Extraction `json:"data,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
	Error    string      `json:"error,omitempty"`
}

const (
	defaultTimeout = 60 * time.Second
	maxRetries     = 4
)

// Client calls the recognition service over HTTP.
type Client struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	httpc    *http.Client
	log      zerolog.Logger
}

// NewClient builds a client for the given endpoint. A zero timeout falls
// back to the default deadline.
func NewClient(endpoint, apiKey string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		timeout:  timeout,
		httpc:    &http.Client{},
		log:      log,
	}
}

// Recognize uploads the statement bytes and returns the service's
// structured response. The whole call, retries included, is bounded by
// the client deadline; 5xx replies are retried with exponential backoff,
// other HTTP errors fail immediately.
func (c *Client) Recognize(ctx context.Context, fileName string, data []byte) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp *Response
	op := func() error {
		r, retryable, err := c.post(ctx, fileName, data)
		if err != nil {
			if !retryable {
				return backoff.Permanent(err)
			}
			c.log.Warn().Err(err).Str("file", fileName).Msg("recognition attempt failed, retrying")
			return err
		}
		resp = r
		return nil
	}

	bo := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	if err := backoff.Retry(op, backoff.WithMaxRetries(bo, maxRetries)); err != nil {
		return nil, err
	}
	return resp, nil
}

// post performs one upload attempt. The second return value reports
// whether the failure is worth retrying.
func (c *Client) post(ctx context.Context, fileName string, data []byte) (*Response, bool, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, false, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, false, err
	}
	if err := mw.Close(); err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpc.Do(req)
	if err != nil {
		// Network-level failures are retryable until the deadline hits.
		return nil, true, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, true, err
	}

	if httpResp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("recognition service returned status %d: %s", httpResp.StatusCode, string(raw))
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("recognition service returned status %d: %s", httpResp.StatusCode, string(raw))
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false, fmt.Errorf("decoding recognition response: %w", err)
	}
	return &resp, false, nil
}
