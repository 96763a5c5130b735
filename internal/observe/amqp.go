package observe

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RetryJob is one history append to be replayed by the worker.
type RetryJob struct {
	UserID uint64 `json:"user_id"`
	Role   string `json:"role"`
	Text   string `json:"text"`
	Cause  string `json:"cause"`
}

// AMQPHook publishes failed history appends to a durable retry queue. A
// separate worker drains the queue and replays the appends, so a transient
// store outage loses no turns.
type AMQPHook struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// DeclareQueues sets up the retry queue and its DLQ on the given channel.
// Both the publisher and the worker call this so either side can start first.
func DeclareQueues(ch *amqp.Channel, queue string) error {
	dlq := queue + ".dlq"

	if _, err := ch.QueueDeclare(
		dlq,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false,
		nil,
	); err != nil {
		return err
	}

	// Main queue dead-letters to the DLQ on reject/nack(requeue=false).
	_, err := ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": dlq,
		},
	)
	return err
}

func NewAMQPHook(url, queue string) (*AMQPHook, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := DeclareQueues(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &AMQPHook{conn: conn, ch: ch, queue: queue}, nil
}

func (h *AMQPHook) Close() error {
	if h.ch != nil {
		_ = h.ch.Close()
	}
	if h.conn != nil {
		return h.conn.Close()
	}
	return nil
}

func (h *AMQPHook) AppendFailed(ctx context.Context, userID uint64, role, text string, cause error) {
	body, err := json.Marshal(RetryJob{
		UserID: userID,
		Role:   role,
		Text:   text,
		Cause:  cause.Error(),
	})
	if err != nil {
		log.Printf("[observe] marshal retry job: %v", err)
		return
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.ch.PublishWithContext(cctx,
		"",      // default exchange
		h.queue, // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	); err != nil {
		// Both the store and the queue are down; all that is left is the log.
		log.Printf("[observe] history append dropped user=%d role=%s: store: %v, queue: %v",
			userID, role, cause, err)
	}
}

var _ Hook = (*AMQPHook)(nil)
var _ Hook = LogHook{}
