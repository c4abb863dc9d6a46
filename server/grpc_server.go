package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/disintegration/imaging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/meadori/dualscreen/hittest"
	"github.com/meadori/dualscreen/layout"
	"github.com/meadori/dualscreen/script"
	"github.com/meadori/dualscreen/session"
)

// Workspace is the part of a session the remote service drives.
type Workspace interface {
	SetRemotePointer(hittest.Sample)
	SetRemoteKeys(uint16)
	Snapshot() *image.RGBA
	State() session.State
	Geometry() session.Geometry
	Layout() *layout.Model
}

// GRPCServer serves the Workspace service for one session.
type GRPCServer struct {
	mu        sync.Mutex
	workspace Workspace
	server    *grpc.Server
	last      hittest.Sample
	log       *slog.Logger
}

// NewGRPCServer creates a new GRPCServer instance.
func NewGRPCServer(w Workspace) *GRPCServer {
	return &GRPCServer{
		workspace: w,
		log:       slog.Default().With(slog.String("component", "server")),
	}
}

// Start listens on addr and serves in the background.
func (s *GRPCServer) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	go func() {
		if err := s.Serve(lis); err != nil {
			s.log.Error("server stopped", "err", err)
		}
	}()
	return nil
}

// Serve serves on lis until Stop is called.
func (s *GRPCServer) Serve(lis net.Listener) error {
	s.mu.Lock()
	if s.server != nil {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.server = grpc.NewServer()
	s.server.RegisterService(&WorkspaceServiceDesc, s)
	srv := s.server
	s.mu.Unlock()

	s.log.Info("workspace service listening", "addr", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Stop gracefully stops the server.
func (s *GRPCServer) Stop() {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.mu.Unlock()
	if srv != nil {
		srv.GracefulStop()
	}
}

// sample converts a pixel pointer into the raw coordinates the session
// reads. Points outside the workspace are clamped to its edge.
func (s *GRPCServer) sample(p Pointer) hittest.Sample {
	g := s.workspace.Geometry()
	x, y := script.Clamp(p.X, p.Y, g.BaseWidth, g.BaseHeight)
	return hittest.Sample{
		X:       hittest.Denormalize(x, g.BaseWidth),
		Y:       hittest.Denormalize(y, g.BaseHeight),
		Contact: p.Contact,
	}
}

func (s *GRPCServer) apply(in *structpb.Struct) error {
	p, err := pointerFromStruct(in)
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	sample := s.sample(p)
	s.mu.Lock()
	s.last = sample
	s.mu.Unlock()
	s.workspace.SetRemotePointer(sample)
	return nil
}

// release lifts a pointer left in contact by a client that went away.
func (s *GRPCServer) release() {
	s.mu.Lock()
	if !s.last.Contact {
		s.mu.Unlock()
		return
	}
	s.last.Contact = false
	sample := s.last
	s.mu.Unlock()
	s.workspace.SetRemotePointer(sample)
}

// SendPointer implements WorkspaceServer.
func (s *GRPCServer) SendPointer(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	if err := s.apply(in); err != nil {
		return nil, err
	}
	return &emptypb.Empty{}, nil
}

// StreamPointer implements WorkspaceServer.
func (s *GRPCServer) StreamPointer(stream grpc.ClientStreamingServer[structpb.Struct, emptypb.Empty]) error {
	s.log.Info("pointer stream opened")
	defer s.release()
	for {
		in, err := stream.Recv()
		if err == io.EOF {
			s.log.Info("pointer stream closed")
			return stream.SendAndClose(&emptypb.Empty{})
		}
		if err != nil {
			return err
		}
		if err := s.apply(in); err != nil {
			return err
		}
	}
}

// SetKeys implements WorkspaceServer.
func (s *GRPCServer) SetKeys(ctx context.Context, in *wrapperspb.UInt32Value) (*emptypb.Empty, error) {
	if in.GetValue() > 0xFFFF {
		return nil, status.Errorf(codes.InvalidArgument, "keypad word 0x%X out of range", in.GetValue())
	}
	s.workspace.SetRemoteKeys(uint16(in.GetValue()))
	return &emptypb.Empty{}, nil
}

// GetFrame implements WorkspaceServer.
func (s *GRPCServer) GetFrame(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BytesValue, error) {
	img := s.workspace.Snapshot()
	if img == nil {
		return nil, status.Error(codes.Unavailable, "no frame composed yet")
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, status.Errorf(codes.Internal, "encode frame: %v", err)
	}
	return wrapperspb.Bytes(buf.Bytes()), nil
}

// GetState implements WorkspaceServer.
func (s *GRPCServer) GetState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st := s.workspace.State()
	g := s.workspace.Geometry()
	m := s.workspace.Layout()

	out := State{
		Tick:       st.Tick,
		Title:      st.Title,
		DualScreen: st.DualScreen,
		Mirrored:   st.Mirrored,
		Word:       st.Word,
		Active:     st.Active,
		Width:      g.BaseWidth,
		Height:     g.BaseHeight,

		BackgroundWidth: st.BackgroundWidth,
	}
	for i, pressed := range st.Pressed {
		if pressed && i < len(m.Buttons) {
			out.Pressed = append(out.Pressed, m.Buttons[i].Label)
		}
	}
	return out.toStruct(), nil
}
