// Package rpcapi binds the speller Service to the internal JSON-over-TCP
// RPC server and provides a typed client for it.
package rpcapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/fastspell/internal/speller"
	apperrors "github.com/Adithya-Monish-Kumar-K/fastspell/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/grpc"
	"github.com/Adithya-Monish-Kumar-K/fastspell/pkg/proto"
)

// Register installs every speller method on srv. Each call is bounded by
// timeout when it is positive.
func Register(srv *grpc.Server, svc *speller.Service, timeout time.Duration) {
	srv.Register(proto.MethodBestMatch, bounded(timeout, func(ctx context.Context, raw json.RawMessage) (any, error) {
		req, err := decode[proto.MatchRequest](raw)
		if err != nil {
			return nil, err
		}
		return svc.BestMatch(ctx, req.Word, req.Distance)
	}))
	srv.Register(proto.MethodHasMatches, bounded(timeout, func(ctx context.Context, raw json.RawMessage) (any, error) {
		req, err := decode[proto.MatchRequest](raw)
		if err != nil {
			return nil, err
		}
		return svc.HasMatches(ctx, req.Word, req.Distance)
	}))
	srv.Register(proto.MethodContains, bounded(timeout, func(ctx context.Context, raw json.RawMessage) (any, error) {
		req, err := decode[proto.MatchRequest](raw)
		if err != nil {
			return nil, err
		}
		return svc.Contains(ctx, req.Word)
	}))
	srv.Register(proto.MethodAddWords, bounded(timeout, func(ctx context.Context, raw json.RawMessage) (any, error) {
		req, err := decode[proto.AddWordsRequest](raw)
		if err != nil {
			return nil, err
		}
		return svc.AddWords(ctx, req.Words, "rpc")
	}))
	srv.Register(proto.MethodStats, func(ctx context.Context, raw json.RawMessage) (any, error) {
		return svc.Stats(), nil
	})
}

func bounded(timeout time.Duration, fn grpc.HandlerFunc) grpc.HandlerFunc {
	if timeout <= 0 {
		return fn
	}
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return fn(ctx, raw)
	}
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, fmt.Errorf("%w: missing params", apperrors.ErrInvalidInput)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return v, nil
}

// Client is a typed wrapper over a grpc.Client connected to a speller.
type Client struct {
	conn *grpc.Client
}

func Dial(ctx context.Context, addr string) (*Client, error) {
	conn, err := grpc.DialContext(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) BestMatch(ctx context.Context, word string, distance int) (proto.MatchResponse, error) {
	var resp proto.MatchResponse
	err := c.conn.CallContext(ctx, proto.MethodBestMatch, proto.MatchRequest{Word: word, Distance: distance}, &resp)
	return resp, err
}

func (c *Client) HasMatches(ctx context.Context, word string, distance int) (proto.CheckResponse, error) {
	var resp proto.CheckResponse
	err := c.conn.CallContext(ctx, proto.MethodHasMatches, proto.MatchRequest{Word: word, Distance: distance}, &resp)
	return resp, err
}

func (c *Client) Contains(ctx context.Context, word string) (proto.CheckResponse, error) {
	var resp proto.CheckResponse
	err := c.conn.CallContext(ctx, proto.MethodContains, proto.MatchRequest{Word: word}, &resp)
	return resp, err
}

func (c *Client) AddWords(ctx context.Context, words []string) (proto.AddWordsResponse, error) {
	var resp proto.AddWordsResponse
	err := c.conn.CallContext(ctx, proto.MethodAddWords, proto.AddWordsRequest{Words: words}, &resp)
	return resp, err
}

func (c *Client) Stats(ctx context.Context) (proto.StatsResponse, error) {
	var resp proto.StatsResponse
	err := c.conn.CallContext(ctx, proto.MethodStats, struct{}{}, &resp)
	return resp, err
}

func (c *Client) Close() error {
	return c.conn.Close()
}
