package server

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ChuLiYu/cpu-scheduler-sim/internal/export"
)

// Client calls a remote Simulator
type Client struct {
	conn   grpc.ClientConnInterface
	closer func() error
}

// NewClient wraps an existing connection
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn, closer: func() error { return nil }}
}

// Dial connects to addr without transport security
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return &Client{conn: conn, closer: conn.Close}, nil
}

// Close releases the connection opened by Dial
func (c *Client) Close() error {
	return c.closer()
}

// Simulate runs one algorithm remotely
func (c *Client) Simulate(ctx context.Context, req SimulateRequest) (export.Document, error) {
	return c.invoke(ctx, simulateMethod, req)
}

// Compare runs a comparison remotely
func (c *Client) Compare(ctx context.Context, req CompareRequest) (export.Document, error) {
	return c.invoke(ctx, compareMethod, req)
}

func (c *Client) invoke(ctx context.Context, method string, req any) (export.Document, error) {
	in, err := toStruct(req)
	if err != nil {
		return export.Document{}, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return export.Document{}, err
	}

	var doc export.Document
	if err := fromStruct(out, &doc); err != nil {
		return export.Document{}, fmt.Errorf("decode response: %w", err)
	}
	if doc.SchemaVersion != export.SchemaVersion {
		return export.Document{}, fmt.Errorf("%w: got %d", export.ErrIncompatibleVersion, doc.SchemaVersion)
	}
	return doc, nil
}
