package server

import (
	"bytes"
	"context"
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client talks to a Workspace service.
type Client struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// Dial connects to target without transport security. Extra options are
// appended after the credentials.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s", target)
	}
	return &Client{conn: conn, cc: conn}, nil
}

// NewClient wraps an existing connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Close closes the connection if the client owns it.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) SendPointer(ctx context.Context, p Pointer) error {
	return c.cc.Invoke(ctx, methodSendPointer, p.toStruct(), new(emptypb.Empty))
}

// SetKeys replaces the remote keypad word. Zero releases every key.
func (c *Client) SetKeys(ctx context.Context, word uint16) error {
	return c.cc.Invoke(ctx, methodSetKeys, wrapperspb.UInt32(uint32(word)), new(emptypb.Empty))
}

// GetFrame fetches and decodes the last composed image.
func (c *Client) GetFrame(ctx context.Context) (image.Image, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, methodGetFrame, new(emptypb.Empty), out); err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(out.GetValue()))
	if err != nil {
		return nil, errors.Wrap(err, "decode frame")
	}
	return img, nil
}

// GetFramePNG fetches the last composed image without decoding it.
func (c *Client) GetFramePNG(ctx context.Context) ([]byte, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, methodGetFrame, new(emptypb.Empty), out); err != nil {
		return nil, err
	}
	return out.GetValue(), nil
}

func (c *Client) GetState(ctx context.Context) (State, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetState, new(emptypb.Empty), out); err != nil {
		return State{}, err
	}
	return stateFromStruct(out), nil
}

// PointerStream sends pointer samples over one StreamPointer call.
type PointerStream struct {
	stream grpc.ClientStreamingClient[structpb.Struct, emptypb.Empty]
}

// StreamPointer opens a pointer stream.
func (c *Client) StreamPointer(ctx context.Context) (*PointerStream, error) {
	st, err := c.cc.NewStream(ctx, &WorkspaceServiceDesc.Streams[0], methodStreamPointer)
	if err != nil {
		return nil, err
	}
	return &PointerStream{stream: &grpc.GenericClientStream[structpb.Struct, emptypb.Empty]{ClientStream: st}}, nil
}

func (p *PointerStream) Send(pt Pointer) error {
	return p.stream.Send(pt.toStruct())
}

// Close ends the stream and waits for the server to acknowledge it. The
// server releases any contact left behind.
func (p *PointerStream) Close() error {
	_, err := p.stream.CloseAndRecv()
	return err
}
