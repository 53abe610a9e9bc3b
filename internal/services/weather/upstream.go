package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const bodySnippetLimit = 256

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// upstream performs bounded GET requests against one JSON API.
type upstream struct {
	name      string
	baseURL   string
	client    HTTPClient
	logger    zerolog.Logger
	timeout   time.Duration
	userAgent string
}

func (u upstream) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	start := time.Now()

	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	endpoint := u.baseURL + path + "?" + params.Encode()

	u.logger.Debug().
		Ctx(ctx).
		Str("upstream", u.name).
		Str("path", path).
		Msg("starting request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		u.logger.Error().
			Ctx(ctx).
			Err(err).
			Str("upstream", u.name).
			Msg("failed to create HTTP request")
		return fmt.Errorf("%w: %s: build request: %w", ErrUpstream, u.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if u.userAgent != "" {
		req.Header.Set("User-Agent", u.userAgent)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		u.logger.Error().
			Ctx(ctx).
			Err(err).
			Str("upstream", u.name).
			Msg("error sending HTTP request")
		return fmt.Errorf("%w: %s: %w", ErrUpstream, u.name, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			u.logger.Error().
				Ctx(ctx).
				Err(cerr).
				Str("upstream", u.name).
				Msg("failed to close response body")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, bodySnippetLimit))
		u.logger.Error().
			Ctx(ctx).
			Str("upstream", u.name).
			Int("status_code", resp.StatusCode).
			Bytes("body", snippet).
			Msg("upstream returned non-2xx status")
		return fmt.Errorf("%w: %s: status %d", ErrUpstream, u.name, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		u.logger.Error().
			Ctx(ctx).
			Err(err).
			Str("upstream", u.name).
			Msg("failed to decode response")
		return fmt.Errorf("%w: %s: decode: %w", ErrUpstream, u.name, err)
	}

	u.logger.Debug().
		Ctx(ctx).
		Str("upstream", u.name).
		Dur("duration_ms", time.Since(start)).
		Msg("request completed")

	return nil
}
