package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"budget/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string][]byte)}
}

func (c *mapCache) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (c *mapCache) Set(key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func newWidgetServer(t *testing.T, hits *int32) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/weather", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "Crowley", r.URL.Query().Get("q"))
		assert.Equal(t, "imperial", r.URL.Query().Get("units"))
		assert.Equal(t, "key123", r.URL.Query().Get("appid"))
		w.Write([]byte(`{"name":"Crowley","main":{"temp":71.6},"weather":[{"description":"clear sky"}]}`))
	})
	mux.HandleFunc("/price", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "bitcoin,ethereum", r.URL.Query().Get("ids"))
		w.Write([]byte(`{"ethereum":{"usd":3000.5},"bitcoin":{"usd":60000}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func widgetConfig(base string) *config.WidgetsConfig {
	return &config.WidgetsConfig{
		Enabled:           true,
		City:              "Crowley",
		Units:             "imperial",
		OpenWeatherAPIKey: "key123",
		OpenWeatherURL:    base + "/weather",
		CoinGeckoURL:      base + "/price",
		Coins:             []string{"bitcoin", "ethereum"},
		VsCurrency:        "usd",
		CacheTTLSeconds:   60,
		TimeoutSeconds:    2,
	}
}

func TestWidgetService_Fetch(t *testing.T) {
	var hits int32
	srv := newWidgetServer(t, &hits)
	s := NewWidgetService(widgetConfig(srv.URL), nil, nil)

	w, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, w.Weather)
	assert.Equal(t, 71.6, w.Weather.Temperature)
	assert.Equal(t, "clear sky", w.Weather.Description)
	require.Len(t, w.Prices, 2)
	assert.Equal(t, "bitcoin", w.Prices[0].Coin)
	assert.Equal(t, 60000.0, w.Prices[0].Price)
	assert.Equal(t, "ethereum", w.Prices[1].Coin)
	assert.Empty(t, w.Errors)
}

func TestWidgetService_UsesCache(t *testing.T) {
	var hits int32
	srv := newWidgetServer(t, &hits)
	s := NewWidgetService(widgetConfig(srv.URL), newMapCache(), nil)

	_, err := s.Fetch(context.Background())
	require.NoError(t, err)
	_, err = s.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestWidgetService_PartialFailure(t *testing.T) {
	var hits int32
	srv := newWidgetServer(t, &hits)
	cfg := widgetConfig(srv.URL)
	cfg.OpenWeatherURL = srv.URL + "/missing"
	s := NewWidgetService(cfg, nil, nil)

	w, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, w.Weather)
	assert.Len(t, w.Prices, 2)
	require.Len(t, w.Errors, 1)
	assert.Contains(t, w.Errors[0], "404")
}

func TestWidgetService_AllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	s := NewWidgetService(widgetConfig(srv.URL), nil, nil)

	_, err := s.Fetch(context.Background())
	assert.Error(t, err)
}
