// Package remote pushes journal mutations to an optional hosted backend.
// The mirror is best effort: the local SQLite store stays the system of
// record, and concurrent writers are last-write-wins at the remote.
package remote

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const apiKeyHeader = "X-Api-Key"

// Client mirrors trade mutations to the configured backend.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

// NewClient creates a mirror client, or nil when mirroring is disabled.
func NewClient(cfg *config.Mirror, logger *zap.Logger) *Client {
	if !cfg.Enabled || cfg.BaseURL == "" {
		return nil
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader(apiKeyHeader, cfg.ApiKey).
		SetHeader("Content-Type", "application/json")

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	logger.Info("Remote mirror enabled", zap.String("base_url", cfg.BaseURL))
	return &Client{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// PushTrade uploads a newly logged trade.
func (c *Client) PushTrade(ctx context.Context, trade models.Trade) error {
	req := c.client.R().
		SetContext(ctx).
		SetBody(trade)

	path := fmt.Sprintf("/users/%s/trades", trade.UserID)
	if _, err := c.doRequest(ctx, "POST", path, req); err != nil {
		return fmt.Errorf("failed to push trade: %w", err)
	}
	return nil
}

// RemoveTrade propagates a trade deletion.
func (c *Client) RemoveTrade(ctx context.Context, userID, tradeID string) error {
	req := c.client.R().SetContext(ctx)

	path := fmt.Sprintf("/users/%s/trades/%s", userID, tradeID)
	if _, err := c.doRequest(ctx, "DELETE", path, req); err != nil {
		return fmt.Errorf("failed to remove trade: %w", err)
	}
	return nil
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing mirror request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("mirror request failed with status %s: %s", resp.Status(), resp.String())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Mirror request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("mirror request failed after %d attempts: %w", maxRetries, err)
}
