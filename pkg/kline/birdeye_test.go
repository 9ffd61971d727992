package kline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBirdeyeFetchKlines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "sui", r.Header.Get("x-chain"))
		assert.Equal(t, suiType, r.URL.Query().Get("address"))
		assert.Equal(t, "1H", r.URL.Query().Get("type"), "hour intervals map to upper case")
		assert.Equal(t, "0", r.URL.Query().Get("time_from"))
		assert.Equal(t, "7200", r.URL.Query().Get("time_to"), "millisecond bounds convert to seconds")

		_, _ = w.Write([]byte(`{"data":{"items":[
			{"unixTime":3600,"o":1.1,"h":1.3,"l":1.0,"c":1.2,"v":500},
			{"unixTime":7200,"o":1.2,"h":1.4,"l":1.1,"c":1.3,"v":400}
		]}}`))
	}))
	defer server.Close()

	client := NewBirdeyeClient("test-key", WithBirdeyeBaseURL(server.URL))
	klines, err := client.FetchKlines(context.Background(), suiType, "1h", 0, 7_200_000)
	require.NoError(t, err)
	require.Len(t, klines, 2)

	assert.Equal(t, int64(3_600_000), klines[0].OpenTime, "unix seconds convert to milliseconds")
	assert.InDelta(t, 1.1, klines[0].Open, 1e-9)
	assert.InDelta(t, 1.3, klines[1].Close, 1e-9)
}

func TestBirdeyeFetchKlinesWithoutKey(t *testing.T) {
	client := NewBirdeyeClient("  ")
	_, err := client.FetchKlines(context.Background(), suiType, "1h", 0, 1000)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestBirdeyeFetchKlinesEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"items":[]}}`))
	}))
	defer server.Close()

	client := NewBirdeyeClient("test-key", WithBirdeyeBaseURL(server.URL))
	_, err := client.FetchKlines(context.Background(), suiType, "1h", 0, 1000)
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestBirdeyeIntervalMapping(t *testing.T) {
	assert.Equal(t, "1m", birdeyeInterval("1m"))
	assert.Equal(t, "15m", birdeyeInterval("15m"))
	assert.Equal(t, "4H", birdeyeInterval("4h"))
	assert.Equal(t, "1D", birdeyeInterval("1d"))
	assert.Equal(t, "1W", birdeyeInterval("1w"))
	// Unknown intervals pass through upper-cased.
	assert.Equal(t, "9H", birdeyeInterval("9h"))
}
