package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"budget/config"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Weather 当前天气
type Weather struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Units       string  `json:"units"`
}

// CoinPrice 加密货币价格
type CoinPrice struct {
	Coin     string  `json:"coin"`
	Currency string  `json:"currency"`
	Price    float64 `json:"price"`
}

// Widgets 仪表盘小组件数据，单项失败记录在 Errors 中
type Widgets struct {
	Weather *Weather    `json:"weather,omitempty"`
	Prices  []CoinPrice `json:"prices"`
	Errors  []string    `json:"errors,omitempty"`
}

// WidgetService 天气与加密货币价格
type WidgetService struct {
	cfg    *config.WidgetsConfig
	client *http.Client
	cache  Cache
	log    *zap.Logger
}

// NewWidgetService 创建小组件服务，cache 可为 nil
func NewWidgetService(cfg *config.WidgetsConfig, cache Cache, log *zap.Logger) *WidgetService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &WidgetService{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		cache:  cache,
		log:    log,
	}
}

// Fetch 获取全部小组件，两项都失败时返回错误
func (s *WidgetService) Fetch(ctx context.Context) (Widgets, error) {
	var w Widgets

	weather, err := s.Weather(ctx)
	if err != nil {
		s.log.Warn("fetch weather failed", zap.Error(err))
		w.Errors = append(w.Errors, "weather: "+err.Error())
	} else {
		w.Weather = &weather
	}

	prices, err := s.Prices(ctx)
	if err != nil {
		s.log.Warn("fetch prices failed", zap.Error(err))
		w.Errors = append(w.Errors, "prices: "+err.Error())
	}
	w.Prices = prices

	if w.Weather == nil && len(w.Prices) == 0 && len(w.Errors) > 0 {
		return w, errors.New(strings.Join(w.Errors, "; "))
	}
	return w, nil
}

type weatherResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// Weather 查询配置城市的当前天气
func (s *WidgetService) Weather(ctx context.Context) (Weather, error) {
	key := "weather:" + url.QueryEscape(s.cfg.City) + ":" + s.cfg.Units
	var out Weather
	if s.cached(key, &out) {
		return out, nil
	}

	q := url.Values{}
	q.Set("q", s.cfg.City)
	q.Set("units", s.cfg.Units)
	q.Set("appid", s.cfg.OpenWeatherAPIKey)

	var resp weatherResponse
	if err := s.getJSON(ctx, s.cfg.OpenWeatherURL, q, &resp); err != nil {
		return Weather{}, err
	}
	if len(resp.Weather) == 0 {
		return Weather{}, errors.New("weather response has no conditions")
	}

	out = Weather{
		City:        s.cfg.City,
		Temperature: resp.Main.Temp,
		Description: resp.Weather[0].Description,
		Units:       s.cfg.Units,
	}
	s.store(key, out)
	return out, nil
}

// Prices 查询配置币种的价格，顺序与配置一致
func (s *WidgetService) Prices(ctx context.Context) ([]CoinPrice, error) {
	if len(s.cfg.Coins) == 0 {
		return nil, nil
	}
	ids := strings.Join(s.cfg.Coins, ",")
	key := "prices:" + url.QueryEscape(ids) + ":" + s.cfg.VsCurrency
	var out []CoinPrice
	if s.cached(key, &out) {
		return out, nil
	}

	q := url.Values{}
	q.Set("ids", ids)
	q.Set("vs_currencies", s.cfg.VsCurrency)

	resp := map[string]map[string]float64{}
	if err := s.getJSON(ctx, s.cfg.CoinGeckoURL, q, &resp); err != nil {
		return nil, err
	}

	out = make([]CoinPrice, 0, len(s.cfg.Coins))
	for _, coin := range s.cfg.Coins {
		price, ok := resp[coin][s.cfg.VsCurrency]
		if !ok {
			continue
		}
		out = append(out, CoinPrice{Coin: coin, Currency: s.cfg.VsCurrency, Price: price})
	}
	s.store(key, out)
	return out, nil
}

func (s *WidgetService) getJSON(ctx context.Context, base string, q url.Values, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	res, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "request")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(err, "unmarshalling response")
	}
	return nil
}

func (s *WidgetService) cached(key string, v interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn("widget cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func (s *WidgetService) store(key string, v interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	ttl := time.Duration(s.cfg.CacheTTLSeconds) * time.Second
	if err := s.cache.Set(key, raw, ttl); err != nil {
		s.log.Warn("widget cache set failed", zap.String("key", key), zap.Error(err))
	}
}
