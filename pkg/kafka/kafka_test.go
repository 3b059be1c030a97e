package kafka

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/resilience"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Words []string `json:"words"`
	}
	got, err := DecodeJSON[payload]([]byte(`{"words":["a","b"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Words)

	_, err = DecodeJSON[payload]([]byte(`{"words":`))
	assert.ErrorContains(t, err, "decoding kafka message")
}

func testConsumer(handler MessageHandler) *Consumer {
	return &Consumer{
		logger:  slog.Default(),
		handler: handler,
		retry:   resilience.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond},
	}
}

func TestProcessRetriesTransientErrors(t *testing.T) {
	calls := 0
	c := testConsumer(func(ctx context.Context, key, value []byte) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	assert.True(t, c.process(context.Background(), kafka.Message{Value: []byte("{}")}))
	assert.Equal(t, 3, calls)
}

func TestProcessGivesUp(t *testing.T) {
	calls := 0
	c := testConsumer(func(ctx context.Context, key, value []byte) error {
		calls++
		return errors.New("down")
	})
	assert.False(t, c.process(context.Background(), kafka.Message{}))
	assert.Equal(t, 3, calls)
}

func TestProcessPermanentErrorSkipsRetries(t *testing.T) {
	calls := 0
	c := testConsumer(func(ctx context.Context, key, value []byte) error {
		calls++
		return resilience.Permanent(errors.New("bad payload"))
	})
	assert.False(t, c.process(context.Background(), kafka.Message{}))
	assert.Equal(t, 1, calls)
}

func TestEncode(t *testing.T) {
	msgs, err := encode([]Event{
		{Key: "spellcheck", Value: map[string][]string{"words": {"pret"}}},
		{Key: "http", Value: 42},
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "spellcheck", string(msgs[0].Key))
	assert.JSONEq(t, `{"words":["pret"]}`, string(msgs[0].Value))
	assert.Equal(t, "42", string(msgs[1].Value))

	_, err = encode([]Event{{Key: "bad", Value: make(chan int)}})
	assert.ErrorContains(t, err, `key "bad"`)
}

func TestNewProducerSettings(t *testing.T) {
	p := NewProducer(config.KafkaConfig{Brokers: []string{"localhost:9092"}}, "dictionary.words")
	assert.Equal(t, "dictionary.words", p.Topic())
	assert.Equal(t, defaultBatchSize, p.writer.BatchSize)
	assert.Equal(t, defaultBatchTimeout, p.writer.BatchTimeout)
	assert.Equal(t, kafka.RequireAll, p.writer.RequiredAcks)

	p = NewProducer(config.KafkaConfig{Producer: config.KafkaProducer{
		BatchSize:    10,
		BatchTimeout: time.Second,
		RequiredAcks: "one",
	}}, "speller.lookups")
	assert.Equal(t, 10, p.writer.BatchSize)
	assert.Equal(t, time.Second, p.writer.BatchTimeout)
	assert.Equal(t, kafka.RequireOne, p.writer.RequiredAcks)
	assert.Equal(t, kafka.RequireNone, requiredAcks("none"))
}

func TestPublishEmptyBatch(t *testing.T) {
	p := NewProducer(config.KafkaConfig{}, "speller.lookups")
	assert.NoError(t, p.PublishBatch(context.Background(), nil))
}
