package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/agrimitra/agri-assist/internal/config"
	"github.com/agrimitra/agri-assist/internal/db"
	"github.com/agrimitra/agri-assist/internal/history"
	"github.com/agrimitra/agri-assist/internal/observe"
)

// The worker drains the history retry queue: appends that failed in the api
// process get replayed against the store here. A replay that fails again is
// rejected to the DLQ.

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using system environment: %v", err)
	}

	cfg := config.Load()
	if cfg.RabbitURL == "" {
		log.Fatal("RABBIT_URL is required for the retry worker")
	}

	store := history.NewGormStore(db.Connect(cfg.DBDSN))

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	if err := observe.DeclareQueues(ch, cfg.HistoryRetryQueue); err != nil {
		log.Fatalf("declare queues: %v", err)
	}

	concurrency := workerConcurrency()
	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("set qos: %v", err)
	}

	deliveries, err := ch.Consume(
		cfg.HistoryRetryQueue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false,
		false,
		nil,
	)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	log.Printf("retry worker consuming %q with concurrency %d", cfg.HistoryRetryQueue, concurrency)

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case d, ok := <-deliveries:
			if !ok {
				break loop
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				handle(store, d)
			}(d)
		}
	}

	wg.Wait()
	log.Println("retry worker stopped")
}

func handle(store history.Store, d amqp.Delivery) {
	var job observe.RetryJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		log.Printf("malformed retry job, rejecting to dlq: %v", err)
		_ = d.Reject(false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if _, err := store.Append(ctx, job.UserID, job.Role, job.Text); err != nil {
		log.Printf("replay append failed user=%d role=%s, rejecting to dlq: %v",
			job.UserID, job.Role, err)
		_ = d.Reject(false)
		return
	}

	if err := d.Ack(false); err != nil {
		log.Printf("ack: %v", err)
	}
	log.Printf("replayed history append user=%d role=%s (original cause: %s)",
		job.UserID, job.Role, job.Cause)
}
