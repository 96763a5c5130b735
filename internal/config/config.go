package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Addr      string
	DBDSN     string
	JWTSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitURL         string
	HistoryRetryQueue string

	// Inference backend (Gemini-style generateContent endpoint)
	InferenceBaseURL string
	InferenceAPIKey  string
	InferenceModel   string
	InferenceTimeout int // seconds

	// Speech-to-text backend (websocket ASR)
	SpeechWSURL       string
	SpeechAppID       string
	SpeechAccessToken string

	WeatherBaseURL  string
	WeatherAPIKey   string
	WeatherCacheTTL int // seconds

	HistoryPageSize    int
	MaxAttachmentBytes int
	DefaultLanguage    string
}

func intEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func strEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func Load() Config {
	// DSN demo:
	// app:apppass@tcp(127.0.0.1:3306)/agri_assist?charset=utf8mb4&parseTime=true&loc=Local
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			"app", "apppass", "127.0.0.1", "3306", "agri_assist",
		)
	}

	return Config{
		Addr:      strEnv("ADDR", ":8080"),
		DBDSN:     dsn,
		JWTSecret: strEnv("JWT_SECRET", "dev-secret-change-me"),

		RedisAddr:     strEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       intEnv("REDIS_DB", 0),

		RabbitURL:         os.Getenv("RABBIT_URL"),
		HistoryRetryQueue: strEnv("HISTORY_RETRY_QUEUE", "history_appends"),

		InferenceBaseURL: strEnv("INFERENCE_BASE_URL", "https://generativelanguage.googleapis.com"),
		InferenceAPIKey:  os.Getenv("INFERENCE_API_KEY"),
		InferenceModel:   strEnv("INFERENCE_MODEL", "gemini-2.5-flash"),
		InferenceTimeout: intEnv("INFERENCE_TIMEOUT", 60),

		SpeechWSURL:       os.Getenv("SPEECH_WS_URL"),
		SpeechAppID:       os.Getenv("SPEECH_APP_ID"),
		SpeechAccessToken: os.Getenv("SPEECH_ACCESS_TOKEN"),

		WeatherBaseURL:  strEnv("WEATHER_BASE_URL", "https://api.weatherapi.com"),
		WeatherAPIKey:   os.Getenv("WEATHER_API_KEY"),
		WeatherCacheTTL: intEnv("WEATHER_CACHE_TTL", 900),

		HistoryPageSize:    intEnv("HISTORY_PAGE_SIZE", 20),
		MaxAttachmentBytes: intEnv("MAX_ATTACHMENT_BYTES", 4<<20),
		DefaultLanguage:    strEnv("DEFAULT_LANGUAGE", "en"),
	}
}
