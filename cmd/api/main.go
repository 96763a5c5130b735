package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/agrimitra/agri-assist/internal/attach"
	"github.com/agrimitra/agri-assist/internal/chat"
	"github.com/agrimitra/agri-assist/internal/config"
	"github.com/agrimitra/agri-assist/internal/db"
	"github.com/agrimitra/agri-assist/internal/history"
	"github.com/agrimitra/agri-assist/internal/httpapi"
	"github.com/agrimitra/agri-assist/internal/inference"
	"github.com/agrimitra/agri-assist/internal/models"
	"github.com/agrimitra/agri-assist/internal/observe"
	"github.com/agrimitra/agri-assist/internal/speech"
	"github.com/agrimitra/agri-assist/internal/store/redisstore"
	"github.com/agrimitra/agri-assist/internal/weather"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using system environment: %v", err)
	}

	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	if err := gdb.AutoMigrate(&models.User{}, &history.Entry{}); err != nil {
		log.Fatalf("automigrate: %v", err)
	}

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rds.Ping(ctx); err != nil {
		log.Printf("warning: redis unreachable, weather cache disabled: %v", err)
		rds = nil
	}
	defer func() {
		if rds != nil {
			_ = rds.Close()
		}
	}()

	// Failed history appends go to the retry queue when one is configured,
	// otherwise to the log.
	var hook observe.Hook = observe.LogHook{}
	if cfg.RabbitURL != "" {
		amqpHook, err := observe.NewAMQPHook(cfg.RabbitURL, cfg.HistoryRetryQueue)
		if err != nil {
			log.Printf("warning: rabbit unreachable, append failures will only be logged: %v", err)
		} else {
			defer amqpHook.Close()
			hook = amqpHook
		}
	}

	// Each session dials its own transcription connection.
	newRecognizer := func() speech.Recognizer { return speech.Disabled{} }
	speechCfg := speech.Config{
		URL:         cfg.SpeechWSURL,
		AppID:       cfg.SpeechAppID,
		AccessToken: cfg.SpeechAccessToken,
	}
	if speechCfg.Enabled() {
		newRecognizer = func() speech.Recognizer { return speech.NewWSRecognizer(speechCfg) }
		log.Println("speech transcription enabled")
	} else {
		log.Println("speech transcription not configured, voice input disabled")
	}

	store := history.NewGormStore(gdb)
	sessions := chat.NewManager(chat.Deps{
		Store: store,
		Infer: inference.NewHTTPClient(
			cfg.InferenceBaseURL,
			cfg.InferenceAPIKey,
			cfg.InferenceModel,
			time.Duration(cfg.InferenceTimeout)*time.Second,
		),
		NewRecognizer: newRecognizer,
		Hook:          hook,
		Encoder:       attach.NewEncoder(cfg.MaxAttachmentBytes),
		PageSize:      cfg.HistoryPageSize,
	})
	review := chat.NewReview(store)

	wc := weather.NewClient(cfg.WeatherBaseURL, cfg.WeatherAPIKey, rds,
		time.Duration(cfg.WeatherCacheTTL)*time.Second)

	router := httpapi.NewRouter(gdb, cfg, sessions, review, wc)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		log.Printf("api listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	// Let detached history writes settle before the process exits.
	sessions.CloseAll()
}
