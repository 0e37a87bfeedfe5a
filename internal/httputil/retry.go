// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the retrying HTTP transport shared by provider clients.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/gene-annotator/pkg/types"
)

// Policy controls retry behaviour for Do.
type Policy struct {
	// MaxAttempts is the total number of attempts; values below 1 mean 1.
	MaxAttempts int

	// BaseDelay is the wait before the first retry. Each later wait doubles.
	BaseDelay time.Duration

	// MaxDelay caps the wait. Zero means uncapped.
	MaxDelay time.Duration
}

// PolicyFrom converts a RetryConfig into a Policy.
func PolicyFrom(cfg types.RetryConfig) Policy {
	return Policy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		MaxDelay:    cfg.MaxDelay,
	}
}

// Delay returns the wait before retry number n (0-based).
func (p Policy) Delay(n int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < n; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// RetryableStatus reports whether an HTTP status is worth another attempt:
// 429 and every 5xx.
func RetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// Do executes req, retrying transport errors, 429 and 5xx responses until
// the policy's attempt budget is spent. Waits follow Policy.Delay.
//
// After the last attempt the final response is returned as-is (the caller
// inspects its status), or the final transport error wrapped with the
// attempt count. Request bodies are replayed through req.GetBody, which
// http.NewRequestWithContext sets for bytes and strings readers. If ctx is
// done during a wait the function returns ctx.Err().
func Do(ctx context.Context, client *http.Client, req *http.Request, p Policy) (*http.Response, error) {
	attempts := p.attempts()

	for attempt := 1; ; attempt++ {
		r := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			r.Body = body
		}

		resp, err := client.Do(r)
		if err == nil && !RetryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if err != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt >= attempts {
			if err != nil {
				return nil, fmt.Errorf("after %d attempts: %w", attempt, err)
			}
			return resp, nil
		}

		if resp != nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.Delay(attempt - 1)):
		}
	}
}

// IsTimeout reports whether err came from a deadline: the context's or the
// client's per-attempt timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
