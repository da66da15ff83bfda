package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bakkerme/prensa/internal/feed"
	"github.com/bakkerme/prensa/internal/retry"
)

// DefaultTimeout bounds one fetch end to end, retries included.
const DefaultTimeout = 25 * time.Second

const bodyPrefixLen = 120

// Params is the normalized query one fetch forwards to the backend.
type Params struct {
	Country      string
	Range        string
	PerFeed      int
	Translate    string // "en" or "none"
	ForceRefresh bool
}

func (p Params) query() url.Values {
	translate := "0"
	if p.Translate == "en" {
		translate = "en"
	}
	force := "0"
	if p.ForceRefresh {
		force = "1"
	}
	q := url.Values{}
	q.Set("country", p.Country)
	q.Set("range", p.Range)
	q.Set("per_feed", strconv.Itoa(p.PerFeed))
	q.Set("translate", translate)
	q.Set("force_refresh", force)
	return q
}

// Client is a pure request/response transformer against one resolved backend
// base URL. It holds no mutable state beyond the http.Client.
type Client struct {
	client      *http.Client
	baseURL     string
	userAgent   string
	timeout     time.Duration
	maxBodySize int64
}

func NewClient(baseURL string, timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = "prensa/0.1"
	}
	return &Client{
		client:      &http.Client{},
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		userAgent:   userAgent,
		timeout:     timeout,
		maxBodySize: 4 << 20, // 4 MiB
	}
}

// Fetch issues GET <base>/news with p encoded as the query string and maps
// the outcome onto the canonical feed.Result. Every failure comes back as a
// *Error with a Kind; the call is aborted when the timeout budget expires.
func (c *Client) Fetch(ctx context.Context, p Params) (*feed.Result, error) {
	target := c.baseURL + "/news?" + p.query().Encode()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		status int
		ctype  string
		body   []byte
	)
	err := retry.Do(ctx, retry.Config{Attempts: 2, BaseDelay: 250 * time.Millisecond}, func() error {
		// Classification below must see only the final attempt.
		status, ctype, body = 0, "", nil

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Cache-Control", "no-store")

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		limited := io.LimitReader(resp.Body, c.maxBodySize+1)
		b, err := io.ReadAll(limited)
		if err != nil {
			return err
		}
		if int64(len(b)) > c.maxBodySize {
			return fmt.Errorf("response exceeds %d bytes", c.maxBodySize)
		}

		status = resp.StatusCode
		ctype = resp.Header.Get("Content-Type")
		body = b

		// Intermediary errors without a structured body are worth one more
		// attempt inside the budget. A structured error body is the
		// backend talking; pass it through instead.
		if (status == http.StatusTooManyRequests || status >= http.StatusInternalServerError) && !isJSON(ctype) {
			return fmt.Errorf("backend transient error: %s", resp.Status)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, &Error{
				Kind:          KindTimeout,
				Message:       fmt.Sprintf("backend did not respond within %s", c.timeout),
				BackendTarget: target,
			}
		}
		if status != 0 {
			return nil, &Error{
				Kind:          KindProtocolMismatch,
				Message:       fmt.Sprintf("HTTP %d with non-JSON body: %s", status, bodyPrefix(body)),
				BackendTarget: target,
			}
		}
		return nil, &Error{
			Kind:          KindNetwork,
			Message:       "could not reach backend: " + err.Error(),
			BackendTarget: target,
		}
	}

	if !isJSON(ctype) {
		return nil, &Error{
			Kind:          KindProtocolMismatch,
			Message:       fmt.Sprintf("expected JSON, got %q (HTTP %d): %s", ctype, status, bodyPrefix(body)),
			BackendTarget: target,
		}
	}

	res, err := feed.Decode(body)
	if err != nil {
		return nil, &Error{
			Kind:          KindProtocolMismatch,
			Message:       fmt.Sprintf("HTTP %d: %v", status, err),
			BackendTarget: target,
		}
	}

	// An error status with a structured body still carries the backend's own
	// diagnosis; surface that message rather than masking it.
	if !res.OK || status >= http.StatusBadRequest {
		msg := res.Error
		if msg == "" {
			msg = fmt.Sprintf("backend reported failure (HTTP %d)", status)
		}
		return nil, &Error{
			Kind:          KindUpstreamReported,
			Message:       msg,
			BackendTarget: target,
		}
	}

	return res, nil
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

func bodyPrefix(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > bodyPrefixLen {
		s = s[:bodyPrefixLen] + "…"
	}
	return s
}
