package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agrimitra/agri-assist/internal/store/redisstore"
)

// Report is the rendering context for the weather screen.
type Report struct {
	TempC     float64    `json:"temp_c"`
	Condition string     `json:"condition"`
	Humidity  int        `json:"humidity"`
	WindKph   float64    `json:"wind_kph"`
	Location  string     `json:"location"`
	Icon      string     `json:"icon"`
	Forecast  []Forecast `json:"forecast"`
}

type Forecast struct {
	Day   string  `json:"day"`
	TempC float64 `json:"temp_c"`
	Icon  string  `json:"icon"`
}

// Fallback is what the screen shows when the upstream is unreachable: a
// degraded report, never an error.
func Fallback(location string) *Report {
	return &Report{Condition: "Unavailable", Location: location, Forecast: []Forecast{}}
}

// Client fetches weather from a weatherapi-style upstream, caching successful
// responses in redis.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *redisstore.Store
	ttl     time.Duration
}

func NewClient(baseURL, apiKey string, cache *redisstore.Store, ttl time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.weatherapi.com"
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		cache:   cache,
		ttl:     ttl,
	}
}

type upstreamResp struct {
	Location struct {
		Name   string `json:"name"`
		Region string `json:"region"`
	} `json:"location"`
	Current struct {
		TempC     float64 `json:"temp_c"`
		Humidity  int     `json:"humidity"`
		WindKph   float64 `json:"wind_kph"`
		Condition struct {
			Text string `json:"text"`
			Icon string `json:"icon"`
		} `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				AvgTempC  float64 `json:"avgtemp_c"`
				Condition struct {
					Icon string `json:"icon"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func absoluteIcon(icon string) string {
	if strings.HasPrefix(icon, "//") {
		return "https:" + icon
	}
	return icon
}

func (c *Client) Get(ctx context.Context, location string) (*Report, error) {
	if c.cache != nil {
		if cached, err := c.cache.GetWeather(ctx, location); err == nil {
			var report Report
			if err := json.Unmarshal([]byte(cached), &report); err == nil {
				return &report, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("[weather] cache read failed: %v", err)
		}
	}

	report, err := c.fetch(ctx, location)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if payload, err := json.Marshal(report); err == nil {
			if err := c.cache.SetWeather(ctx, location, string(payload), c.ttl); err != nil {
				log.Printf("[weather] cache write failed: %v", err)
			}
		}
	}
	return report, nil
}

func (c *Client) fetch(ctx context.Context, location string) (*Report, error) {
	u := fmt.Sprintf("%s/v1/forecast.json?key=%s&q=%s&days=3",
		strings.TrimRight(c.baseURL, "/"), url.QueryEscape(c.apiKey), url.QueryEscape(location))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather: upstream status %d", resp.StatusCode)
	}

	var decoded upstreamResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}

	report := &Report{
		TempC:     decoded.Current.TempC,
		Condition: decoded.Current.Condition.Text,
		Humidity:  decoded.Current.Humidity,
		WindKph:   decoded.Current.WindKph,
		Location:  decoded.Location.Name + ", " + decoded.Location.Region,
		Icon:      absoluteIcon(decoded.Current.Condition.Icon),
		Forecast:  make([]Forecast, 0, len(decoded.Forecast.ForecastDay)),
	}
	for _, d := range decoded.Forecast.ForecastDay {
		day := d.Date
		if parsed, err := time.Parse("2006-01-02", d.Date); err == nil {
			day = parsed.Weekday().String()[:3]
		}
		report.Forecast = append(report.Forecast, Forecast{
			Day:   day,
			TempC: d.Day.AvgTempC,
			Icon:  absoluteIcon(d.Day.Condition.Icon),
		})
	}
	return report, nil
}
