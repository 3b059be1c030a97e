package rpcapi

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/speller"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/grpc"
)

func startServer(t *testing.T) *Client {
	t.Helper()
	engine := speller.NewEngine(-1, nil)
	require.NoError(t, engine.LoadWords(context.Background(), []string{"prout", "pret", "part", "tourte"}))

	srv := grpc.NewServer()
	Register(srv, speller.NewService(engine, speller.Options{}), time.Second)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.ServeListener(ln)
	t.Cleanup(srv.Stop)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, err := Dial(ctx, ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRoundTrip(t *testing.T) {
	client := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	m, err := client.BestMatch(ctx, "prot", -1)
	require.NoError(t, err)
	assert.True(t, m.Found)
	assert.Equal(t, 1, m.Distance)

	c, err := client.HasMatches(ctx, "xxxxxxx", 2)
	require.NoError(t, err)
	assert.False(t, c.Match)

	c, err = client.Contains(ctx, "pret")
	require.NoError(t, err)
	assert.True(t, c.Match)

	added, err := client.AddWords(ctx, []string{"tarte", "part"})
	require.NoError(t, err)
	assert.Equal(t, 1, added.Added)
	assert.Equal(t, 5, added.Total)

	stats, err := client.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Words)
	assert.Equal(t, uint64(2), stats.Generation)
}

func TestErrorsCrossTheWire(t *testing.T) {
	client := startServer(t)
	ctx := context.Background()

	_, err := client.BestMatch(ctx, "pret", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid distance")

	_, err = client.AddWords(ctx, []string{strings.Repeat("w", 260)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word too long")
}

func TestDecodeRejectsBadParams(t *testing.T) {
	_, err := decode[struct{ Word string }](nil)
	assert.Error(t, err)
	_, err = decode[struct{ Word string }]([]byte(`{"Word": 3}`))
	assert.Error(t, err)
}
