package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCommunityFetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"member_count": 1250, "total_channels": 480, "total_capacity_btc": "21.50000000"}`))
	}))
	defer srv.Close()

	c := NewCommunity(CommunityOptions{StatsURL: srv.URL, Source: "api"}, zerolog.Nop())

	metrics, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1250), metrics.MemberCount)
	require.Equal(t, int64(480), metrics.TotalChannels)
	require.True(t, metrics.TotalCapacity.Equal(decimal.RequireFromString("21.5")))
	require.Nil(t, metrics.BlockHeight)
	require.Equal(t, "api", metrics.Source)
	require.Equal(t, "community-pulse/1.0", gotUA)
}

func TestCommunityFetchNumericCapacity(t *testing.T) {
	// Some deployments serve capacity as a bare JSON number.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"member_count": 10, "total_channels": 5, "total_capacity_btc": 1.25}`))
	}))
	defer srv.Close()

	c := NewCommunity(CommunityOptions{StatsURL: srv.URL}, zerolog.Nop())

	metrics, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.True(t, metrics.TotalCapacity.Equal(decimal.RequireFromString("1.25")))
}

func TestCommunityFetchWithTipHeight(t *testing.T) {
	stats := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"member_count": 10, "total_channels": 5, "total_capacity_btc": "1.0"}`))
	}))
	defer stats.Close()

	tip := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("910452\n"))
	}))
	defer tip.Close()

	c := NewCommunity(CommunityOptions{StatsURL: stats.URL, TipHeightURL: tip.URL}, zerolog.Nop())

	metrics, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, metrics.BlockHeight)
	require.Equal(t, int64(910452), *metrics.BlockHeight)
}

func TestCommunityFetchTipHeightBestEffort(t *testing.T) {
	stats := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"member_count": 10, "total_channels": 5, "total_capacity_btc": "1.0"}`))
	}))
	defer stats.Close()

	tip := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer tip.Close()

	c := NewCommunity(CommunityOptions{StatsURL: stats.URL, TipHeightURL: tip.URL}, zerolog.Nop())

	// A broken tip endpoint must not sink the stats reading.
	metrics, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Nil(t, metrics.BlockHeight)
	require.Equal(t, int64(10), metrics.MemberCount)
}

func TestCommunityFetchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message": "rate limited"}`))
	}))
	defer srv.Close()

	c := NewCommunity(CommunityOptions{StatsURL: srv.URL}, zerolog.Nop())

	_, err := c.Fetch(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
	require.Contains(t, err.Error(), "rate limited")
}

func TestCommunityFetchMissingURL(t *testing.T) {
	c := NewCommunity(CommunityOptions{}, zerolog.Nop())
	_, err := c.Fetch(context.Background())
	require.Error(t, err)
}
