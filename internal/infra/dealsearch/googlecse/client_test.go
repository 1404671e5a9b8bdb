package googlecse

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSearchDeals(t *testing.T) {
	var gotQuery, gotKey, gotCX string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("key")
		gotCX = r.URL.Query().Get("cx")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"title":"Mlijeko 1L","snippet":"Svježe mlijeko 0,89 € -25% akcija","link":"https://www.lidl.hr/p/mlijeko"},
			{"title":"Mlijeko","snippet":"Ponuda tjedna","link":"https://example.com/mlijeko"}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "k", EngineID: "cx", BaseURL: srv.URL}, newTestLogger())
	deals, err := client.SearchDeals(context.Background(), "mlijeko", "Zagreb")
	require.NoError(t, err)
	require.Equal(t, "k", gotKey)
	require.Equal(t, "cx", gotCX)
	require.Equal(t, BuildQuery("mlijeko"), gotQuery)

	require.Len(t, deals, 2)
	require.Equal(t, "mlijeko", deals[0].ProductName)
	require.Equal(t, "Lidl", deals[0].StoreName)
	require.Equal(t, "0,89 €", deals[0].Price)
	require.Equal(t, "-25%", deals[0].Discount)
	require.Equal(t, "Trgovina", deals[1].StoreName)
	require.Empty(t, deals[1].Price)
	require.Empty(t, deals[1].Discount)
}

func TestSearchDealsNotConfigured(t *testing.T) {
	client := NewClient(Config{}, newTestLogger())
	require.False(t, client.Configured())

	deals, err := client.SearchDeals(context.Background(), "kruh", "")
	require.NoError(t, err)
	require.Empty(t, deals)
}

func TestSearchDealsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "k", EngineID: "cx", BaseURL: srv.URL}, newTestLogger())
	_, err := client.SearchDeals(context.Background(), "kruh", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=429")
}

func TestSearchDealsBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(Config{
		APIKey:   "k",
		EngineID: "cx",
		BaseURL:  srv.URL,
		Breaker:  BreakerConfig{Enabled: true, FailureThreshold: 2, Timeout: time.Minute},
	}, newTestLogger())

	for i := 0; i < 2; i++ {
		_, err := client.SearchDeals(context.Background(), "jaja", "")
		require.Error(t, err)
	}
	_, err := client.SearchDeals(context.Background(), "jaja", "")
	require.True(t, errors.Is(err, gobreaker.ErrOpenState))
	require.Equal(t, int32(2), calls.Load())
}

func TestExtractPriceInfo(t *testing.T) {
	price, discount := extractPriceInfo("Jaja M 10/1 samo 15,99 kn uz 30% popust")
	require.Equal(t, "15,99 kn", price)
	require.Equal(t, "30%", discount)

	price, discount = extractPriceInfo("Akcija vrijedi do nedjelje")
	require.Empty(t, price)
	require.Equal(t, "Akcija", discount)
}
