package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CommunityOptions parameterise the community stats client.
type CommunityOptions struct {
	StatsURL     string
	TipHeightURL string // optional plain-text block height endpoint
	Timeout      time.Duration
	UserAgent    string
	Source       string
}

// Community fetches metrics from a read-only community statistics API and,
// optionally, the chain tip height from a second endpoint.
type Community struct {
	opts   CommunityOptions
	logger zerolog.Logger
	client *http.Client
}

// NewCommunity constructs a community metrics fetcher.
func NewCommunity(opts CommunityOptions, logger zerolog.Logger) *Community {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Community{
		opts:   opts,
		logger: logger.With().Str("component", "community_fetcher").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

type statsResponse struct {
	MemberCount      int64       `json:"member_count"`
	TotalChannels    int64       `json:"total_channels"`
	TotalCapacityBTC json.Number `json:"total_capacity_btc"`
}

// Fetch retrieves the current metrics reading.
func (c *Community) Fetch(ctx context.Context) (Metrics, error) {
	if c.opts.StatsURL == "" {
		return Metrics{}, errors.New("stats url required")
	}

	payload, err := c.get(ctx, c.opts.StatsURL)
	if err != nil {
		return Metrics{}, err
	}

	var stats statsResponse
	if err := json.Unmarshal(payload, &stats); err != nil {
		return Metrics{}, fmt.Errorf("decode stats payload: %w", err)
	}

	capacity, err := decimal.NewFromString(stats.TotalCapacityBTC.String())
	if err != nil {
		return Metrics{}, fmt.Errorf("parse total capacity: %w", err)
	}

	metrics := Metrics{
		MemberCount:   stats.MemberCount,
		TotalChannels: stats.TotalChannels,
		TotalCapacity: capacity,
		Source:        c.opts.Source,
	}

	if c.opts.TipHeightURL != "" {
		height, heightErr := c.fetchTipHeight(ctx)
		if heightErr != nil {
			// Block height is best effort; a failed tip lookup must not
			// lose the day's community reading.
			c.logger.Warn().Err(heightErr).Msg("tip height unavailable")
		} else {
			metrics.BlockHeight = &height
		}
	}

	return metrics, nil
}

func (c *Community) fetchTipHeight(ctx context.Context) (int64, error) {
	payload, err := c.get(ctx, c.opts.TipHeightURL)
	if err != nil {
		return 0, err
	}

	height, err := strconv.ParseInt(strings.TrimSpace(string(payload)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse tip height: %w", err)
	}
	return height, nil
}

func (c *Community) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "community-pulse/1.0")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError(resp.StatusCode, payload)
	}
	return payload, nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Message != "" {
			return fmt.Errorf("stats api error (%d): %s", status, apiErr.Message)
		}
		if apiErr.Error != "" {
			return fmt.Errorf("stats api error (%d): %s", status, apiErr.Error)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("stats api error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("stats api error (%d)", status)
}

var _ MetricsFetcher = (*Community)(nil)
