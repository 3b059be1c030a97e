package updates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/fastspell/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/proto"
)

type fakeAdder struct {
	calls   [][]string
	origins []string
	err     error
}

func (f *fakeAdder) AddWords(ctx context.Context, words []string, origin string) (proto.AddWordsResponse, error) {
	if f.err != nil {
		return proto.AddWordsResponse{}, f.err
	}
	f.calls = append(f.calls, words)
	f.origins = append(f.origins, origin)
	return proto.AddWordsResponse{Added: len(words)}, nil
}

type fakeProducer struct {
	events []kafka.Event
	err    error
}

func (f *fakeProducer) Publish(ctx context.Context, event kafka.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func encode(t *testing.T, msg Message) []byte {
	t.Helper()
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	return b
}

func TestHandlerAddsWords(t *testing.T) {
	adder := &fakeAdder{}
	h := Handler(adder)

	err := h(context.Background(), []byte("cli"), encode(t, Message{Words: []string{"pret", "part"}, Source: "cli"}))
	require.NoError(t, err)
	err = h(context.Background(), nil, encode(t, Message{Words: []string{"x"}}))
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"pret", "part"}, {"x"}}, adder.calls)
	assert.Equal(t, []string{"kafka:cli", "kafka"}, adder.origins)
}

func TestHandlerSkipsBadMessages(t *testing.T) {
	adder := &fakeAdder{}
	h := Handler(adder)

	assert.NoError(t, h(context.Background(), nil, []byte("{not json")))
	assert.NoError(t, h(context.Background(), nil, encode(t, Message{})))
	assert.Empty(t, adder.calls)

	adder.err = fmt.Errorf("word 0: %w", apperrors.ErrWordTooLong)
	assert.NoError(t, h(context.Background(), nil, encode(t, Message{Words: []string{"w"}})))
}

func TestHandlerReturnsTransientErrors(t *testing.T) {
	boom := errors.New("db down")
	h := Handler(&fakeAdder{err: boom})
	err := h(context.Background(), nil, encode(t, Message{Words: []string{"w"}, Source: "s"}))
	assert.ErrorIs(t, err, boom)
}

func TestPublisher(t *testing.T) {
	prod := &fakeProducer{}
	p := NewPublisher(prod)

	require.NoError(t, p.Publish(context.Background(), nil, "cli"))
	assert.Empty(t, prod.events)

	require.NoError(t, p.Publish(context.Background(), []string{"a", "b"}, "cli"))
	require.Len(t, prod.events, 1)
	assert.Equal(t, "cli", prod.events[0].Key)
	msg := prod.events[0].Value.(Message)
	assert.Equal(t, []string{"a", "b"}, msg.Words)
	assert.False(t, msg.PublishedAt.IsZero())

	prod.err = errors.New("broker gone")
	assert.ErrorIs(t, p.Publish(context.Background(), []string{"c"}, "cli"), prod.err)
}
