package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
)

// amqpPublisher: часть *amqp.Channel, нужная приёмнику.
type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSink публикует сообщение в RabbitMQ как JSON.
// Ключ маршрутизации: Message.To, если очередь не задана явно.
type AMQPSink struct {
	ch       amqpPublisher
	exchange string
	queue    string
	now      func() time.Time
}

func NewAMQPSink(ch amqpPublisher, exchange, queue string) *AMQPSink {
	return &AMQPSink{ch: ch, exchange: exchange, queue: queue, now: time.Now}
}

func (s *AMQPSink) Send(ctx context.Context, m Message) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	key := s.queue
	if key == "" {
		key = m.To
	}

	err = s.ch.PublishWithContext(
		ctx,
		s.exchange,
		key,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    s.now(),
			Type:         string(m.Kind),
		},
	)
	if err != nil {
		return fmt.Errorf("%w: amqp publish: %w", ErrDelivery, err)
	}
	return nil
}

// AMQPConn: соединение и канал RabbitMQ с объявленной очередью.
type AMQPConn struct {
	conn    *amqp.Connection
	Channel *amqp.Channel
	Queue   string
}

// DialAMQP подключается к RabbitMQ и объявляет durable-очередь.
func DialAMQP(url, queue string) (*AMQPConn, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &AMQPConn{conn: conn, Channel: ch, Queue: q.Name}, nil
}

func (c *AMQPConn) Close() error {
	if err := c.Channel.Close(); err != nil {
		c.conn.Close()
		return err
	}
	return c.conn.Close()
}

// kafkaWriter: часть *kafka.Writer, нужная приёмнику.
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink пишет сообщение в топик; ключ: номер бронирования,
// чтобы события одного бронирования шли в одну партицию.
type KafkaSink struct {
	w   kafkaWriter
	now func() time.Time
}

func NewKafkaSink(w kafkaWriter) *KafkaSink {
	return &KafkaSink{w: w, now: time.Now}
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func (s *KafkaSink) Send(ctx context.Context, m Message) error {
	value, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	key := m.To
	if n, ok := m.Payload["bookingNumber"].(string); ok && n != "" {
		key = n
	}

	err = s.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  s.now(),
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(m.Kind)},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: kafka write: %w", ErrDelivery, err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.w.Close()
}
