package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetScannerPage(t *testing.T) {
	var gotQuery atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/scanner", r.URL.Path)
		gotQuery.Store(r.URL.Query().Encode())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"pairs":[{"chainId":1,"pairAddress":"0xABC","price":"1.5","volume":"1000"}],"totalRows":1}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.GetScannerPage(context.Background(), ScannerParams{
		Chain:   "ETH",
		RankBy:  RankByVolume,
		OrderBy: OrderDesc,
		IsNotHP: true,
		MaxAge:  7200,
		Page:    2,
	})
	require.NoError(t, err)
	require.Len(t, resp.Pairs, 1)
	assert.Equal(t, "0xABC", resp.Pairs[0].PairAddress)
	assert.Equal(t, 1, resp.TotalRows)

	q := gotQuery.Load().(string)
	assert.Contains(t, q, "chain=ETH")
	assert.Contains(t, q, "rankBy=volume")
	assert.Contains(t, q, "orderBy=desc")
	assert.Contains(t, q, "isNotHP=true")
	assert.Contains(t, q, "maxAge=7200")
	assert.Contains(t, q, "page=2")
}

func TestGetScannerPage_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"pairs":[],"totalRows":0}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithRetries(3, time.Millisecond))
	resp, err := client.GetScannerPage(context.Background(), ScannerParams{Page: 1})
	require.NoError(t, err)
	assert.Empty(t, resp.Pairs)
	assert.EqualValues(t, 3, calls.Load())
}

func TestGetScannerPage_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithRetries(3, time.Millisecond))
	_, err := client.GetScannerPage(context.Background(), ScannerParams{Page: 1})
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}
