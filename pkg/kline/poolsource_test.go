package kline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPoolID = "0x5eb2dfcdd1b15d2021328258f6d5ec081e9a0cdcfa9e13a0eaeb9b5f7505ca78"

func TestPoolKlineFetchObjectRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testPoolID, r.URL.Query().Get("pool_id"))
		assert.Equal(t, "1h", r.URL.Query().Get("interval"))
		_, _ = w.Write([]byte(`{"data":{"list":[
			{"open_time":1700000000,"open":"1.1","high":1.3,"low":1.0,"close":1.2,"vol":500},
			{"open_time":1700003600,"open":1.2,"high":1.4,"low":1.1,"close":1.3,"volume":400}
		]}}`))
	}))
	defer server.Close()

	client, err := NewPoolKlineClient(server.URL)
	require.NoError(t, err)

	klines, err := client.FetchKlines(context.Background(), testPoolID, "1h", 0, 1_700_007_200_000)
	require.NoError(t, err)
	require.Len(t, klines, 2)

	assert.Equal(t, int64(1_700_000_000_000), klines[0].OpenTime, "second timestamps scale to milliseconds")
	assert.InDelta(t, 1.1, klines[0].Open, 1e-9, "string-encoded prices decode")
	assert.InDelta(t, 500.0, klines[0].Volume, 1e-9, "vol alias maps to volume")
	assert.InDelta(t, 400.0, klines[1].Volume, 1e-9)
}

func TestPoolKlineFetchArrayRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"klines":[
			[1700000000000,"1.1","1.3","1.0","1.2","500"],
			[1700003600000,"1.2","1.4","1.1","1.3"]
		]}`))
	}))
	defer server.Close()

	client, err := NewPoolKlineClient(server.URL)
	require.NoError(t, err)

	klines, err := client.FetchKlines(context.Background(), testPoolID, "1h", 0, 1_700_007_200_000)
	require.NoError(t, err)
	require.Len(t, klines, 2)

	assert.Equal(t, int64(1_700_000_000_000), klines[0].OpenTime)
	assert.InDelta(t, 1.2, klines[0].Close, 1e-9)
	assert.Zero(t, klines[1].Volume, "missing trailing volume defaults to zero")
}

func TestPoolKlineURLTemplate(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"list":[{"timestamp":1700000000,"open":1,"high":1,"low":1,"close":1}]}`))
	}))
	defer server.Close()

	client, err := NewPoolKlineClient(server.URL + "/klines/{poolId}/{interval}/{start}/{end}")
	require.NoError(t, err)

	_, err = client.FetchKlines(context.Background(), "pool-1", "1h", 100, 200)
	require.NoError(t, err)
	assert.Equal(t, "/klines/pool-1/1h/100/200", path)
}

func TestPoolKlineRejectsEmptyURL(t *testing.T) {
	_, err := NewPoolKlineClient("   ")
	assert.Error(t, err)
}

func TestPoolKlineSkipsMalformedRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"rows":[
			{"open":1,"high":1,"low":1,"close":1},
			{"time":1700000000,"open":1,"high":1,"low":1,"close":1}
		]}`))
	}))
	defer server.Close()

	client, err := NewPoolKlineClient(server.URL)
	require.NoError(t, err)

	klines, err := client.FetchKlines(context.Background(), testPoolID, "1h", 0, 1_700_007_200_000)
	require.NoError(t, err)
	require.Len(t, klines, 1, "record without any timestamp field drops out")
	assert.Equal(t, int64(1_700_000_000_000), klines[0].OpenTime)
}

func TestPoolKlineEmptyPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"list":[]}}`))
	}))
	defer server.Close()

	client, err := NewPoolKlineClient(server.URL)
	require.NoError(t, err)

	_, err = client.FetchKlines(context.Background(), testPoolID, "1h", 0, 1000)
	assert.ErrorIs(t, err, ErrEmptyResult)
}
