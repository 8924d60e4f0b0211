//go:build integration

package testutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

var reTopicUnsafe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// TopicSet — изолированные топик и группа консьюмеров одного теста.
type TopicSet struct {
	Topic string
	Group string
}

// NewTopicSet — уникальные topic/group: "<base>-<имя теста>-<8 символов uuid>".
// Имя теста очищается от символов, которые брокер не примет.
func NewTopicSet(base, testName string) TopicSet {
	name := reTopicUnsafe.ReplaceAllString(testName, "-")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	topic := fmt.Sprintf("%s-%s-%s", base, name, suffix)
	return TopicSet{Topic: topic, Group: topic + "-g"}
}

// EnsureTopics — создать топики через контроллер кластера и дождаться их в метаданных.
// Уже существующий топик ошибкой не считается.
func EnsureTopics(ctx context.Context, brokers []string, topics ...string) error {
	if len(brokers) == 0 {
		return errors.New("no brokers")
	}
	addr := brokerAddr(brokers[0])

	var d kafka.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	ctrl, err := conn.Controller()
	_ = conn.Close()
	if err != nil {
		return fmt.Errorf("controller: %w", err)
	}

	admin, err := d.DialContext(ctx, "tcp", net.JoinHostPort(ctrl.Host, strconv.Itoa(ctrl.Port)))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer admin.Close()

	cfgs := make([]kafka.TopicConfig, 0, len(topics))
	for _, t := range topics {
		cfgs = append(cfgs, kafka.TopicConfig{Topic: t, NumPartitions: 1, ReplicationFactor: 1})
	}
	if err := admin.CreateTopics(cfgs...); err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("create topics: %w", err)
	}

	for _, t := range topics {
		if err := waitTopic(ctx, &d, addr, t); err != nil {
			return err
		}
	}
	return nil
}

// ReadOne — прочитать первое сообщение топика с начала (без группы).
func ReadOne(ctx context.Context, brokers []string, topic string) (kafka.Message, error) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		StartOffset: kafka.FirstOffset,
		MaxWait:     250 * time.Millisecond,
	})
	defer r.Close()
	return r.ReadMessage(ctx)
}

// brokerAddr — "PLAINTEXT://host:port" (так отдаёт testcontainers) → "host:port".
func brokerAddr(raw string) string {
	raw = strings.TrimSpace(raw)
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return u.Host
	}
	return raw
}

func waitTopic(ctx context.Context, d *kafka.Dialer, addr, topic string) error {
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err == nil {
			parts, perr := conn.ReadPartitions(topic)
			_ = conn.Close()
			if perr == nil && len(parts) > 0 {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("topic %q not ready: %w", topic, ctx.Err())
		case <-tick.C:
		}
	}
}
