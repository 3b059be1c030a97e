// Package updates carries dictionary additions over Kafka. Any process can
// publish a batch of words to the word-updates topic; every speller replica
// consumes the topic and indexes the words into its own dictionary.
package updates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/fastspell/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/proto"
)

// Message is the payload of the word-updates topic.
type Message struct {
	Words       []string  `json:"words"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// Adder indexes words. *speller.Service satisfies it.
type Adder interface {
	AddWords(ctx context.Context, words []string, origin string) (proto.AddWordsResponse, error)
}

// Producer is the subset of kafka.Producer the Publisher uses.
type Producer interface {
	Publish(ctx context.Context, event kafka.Event) error
}

type Publisher struct {
	producer Producer
	logger   *slog.Logger
}

func NewPublisher(producer Producer) *Publisher {
	return &Publisher{
		producer: producer,
		logger:   slog.Default().With("component", "words-publisher"),
	}
}

// Publish sends words as one message keyed by source, so batches from one
// source stay ordered.
func (p *Publisher) Publish(ctx context.Context, words []string, source string) error {
	if len(words) == 0 {
		return nil
	}
	msg := Message{
		Words:       words,
		Source:      source,
		PublishedAt: time.Now().UTC(),
	}
	if err := p.producer.Publish(ctx, kafka.Event{Key: source, Value: msg}); err != nil {
		return fmt.Errorf("publishing %d words: %w", len(words), err)
	}
	p.logger.Info("words published", "count", len(words), "source", source)
	return nil
}

// Handler returns a Kafka handler that adds each message's words through
// adder. Malformed messages and rejected words are logged and skipped;
// any other failure is returned so the message is not committed.
func Handler(adder Adder) kafka.MessageHandler {
	logger := slog.Default().With("component", "words-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		msg, err := kafka.DecodeJSON[Message](value)
		if err != nil {
			logger.Error("skipping malformed word update", "key", string(key), "error", err)
			return nil
		}
		if len(msg.Words) == 0 {
			return nil
		}
		origin := "kafka"
		if msg.Source != "" {
			origin = "kafka:" + msg.Source
		}
		resp, err := adder.AddWords(ctx, msg.Words, origin)
		if err != nil {
			if isRejected(err) {
				logger.Warn("skipping rejected word update",
					"source", msg.Source,
					"words", len(msg.Words),
					"error", err,
				)
				return nil
			}
			return fmt.Errorf("applying word update from %q: %w", msg.Source, err)
		}
		logger.Debug("word update applied",
			"source", msg.Source,
			"added", resp.Added,
			"total", resp.Total,
		)
		return nil
	}
}

func isRejected(err error) bool {
	return errors.Is(err, apperrors.ErrWordTooLong) || errors.Is(err, apperrors.ErrInvalidInput)
}
