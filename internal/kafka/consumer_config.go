package kafka

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// Значения по умолчанию для незаданных полей ConsumerConfig.
const (
	defaultProcessTimeout = 5 * time.Second
	defaultRetryInitial   = time.Second
	defaultRetryMax       = 30 * time.Second
	defaultMaxWait        = 500 * time.Millisecond
)

// ConsumerConfig — параметры чтения топика каталога.
type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	StartOffset string // first|last, регистр и пробелы не важны

	ProcessTimeout time.Duration
	RetryInitial   time.Duration
	RetryMax       time.Duration
	MaxWait        time.Duration // сколько брокер копит батч перед ответом на fetch
}

// withDefaults — копия конфига с заполненными таймаутами; RetryMax не меньше RetryInitial.
func (c ConsumerConfig) withDefaults() ConsumerConfig {
	if c.ProcessTimeout <= 0 {
		c.ProcessTimeout = defaultProcessTimeout
	}
	if c.RetryInitial <= 0 {
		c.RetryInitial = defaultRetryInitial
	}
	if c.RetryMax <= 0 {
		c.RetryMax = defaultRetryMax
	}
	if c.RetryMax < c.RetryInitial {
		c.RetryMax = c.RetryInitial
	}
	if c.MaxWait <= 0 {
		c.MaxWait = defaultMaxWait
	}
	return c
}

// ReaderConfig — конфигурация kafka.Reader с ручным коммитом оффсетов (CommitInterval = 0).
func (c *ConsumerConfig) ReaderConfig() kafka.ReaderConfig {
	d := c.withDefaults()
	return kafka.ReaderConfig{
		Brokers:        d.Brokers,
		GroupID:        d.GroupID,
		Topic:          d.Topic,
		StartOffset:    parseStartOffset(d.StartOffset),
		MaxWait:        d.MaxWait,
		CommitInterval: 0,
	}
}

// parseStartOffset — "first" читает группу с начала топика, всё остальное с конца.
func parseStartOffset(s string) int64 {
	if strings.EqualFold(strings.TrimSpace(s), "first") {
		return kafka.FirstOffset
	}
	return kafka.LastOffset
}
