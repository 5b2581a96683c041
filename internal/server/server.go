// ============================================================================
// Simulator gRPC service
// ============================================================================
//
// Package: internal/server
// File: server.go
// Function: Exposes Service over gRPC as schedsim.v1.Simulator
//
// Wire format:
//   Both methods are unary and carry google.protobuf.Struct messages. The
//   request Struct holds a SimulateRequest / CompareRequest in its JSON
//   shape, the response Struct an export.Document.
//
//   rpc Simulate(google.protobuf.Struct) returns (google.protobuf.Struct);
//   rpc Compare(google.protobuf.Struct) returns (google.protobuf.Struct);
//
// Errors:
//   Request problems map to codes.InvalidArgument, cancellation to
//   codes.Canceled / codes.DeadlineExceeded, anything else to codes.Internal.
//
// ============================================================================

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var log = slog.Default()

const (
	serviceName    = "schedsim.v1.Simulator"
	simulateMethod = "/" + serviceName + "/Simulate"
	compareMethod  = "/" + serviceName + "/Compare"
)

// SimulatorServer is the server API of schedsim.v1.Simulator
type SimulatorServer interface {
	Simulate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Compare(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var simulatorServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*SimulatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Simulate", Handler: unaryHandler(simulateMethod, SimulatorServer.Simulate)},
		{MethodName: "Compare", Handler: unaryHandler(compareMethod, SimulatorServer.Compare)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "schedsim/v1/simulator.proto",
}

type unaryMethod func(SimulatorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SimulatorServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(SimulatorServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RegisterSimulatorServer registers srv on s
func RegisterSimulatorServer(s grpc.ServiceRegistrar, srv SimulatorServer) {
	s.RegisterService(&simulatorServiceDesc, srv)
}

// Server adapts Service to SimulatorServer
type Server struct {
	svc  *Service
	grpc *grpc.Server
}

// NewServer creates a gRPC server with the Simulator service registered
func NewServer(svc *Service, opts ...grpc.ServerOption) *Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(loggingInterceptor))
	s := &Server{
		svc:  svc,
		grpc: grpc.NewServer(opts...),
	}
	RegisterSimulatorServer(s.grpc, s)
	return s
}

// Serve accepts connections on lis until Stop is called
func (s *Server) Serve(lis net.Listener) error {
	log.Info("gRPC server listening", "addr", lis.Addr().String(), "service", serviceName)
	return s.grpc.Serve(lis)
}

// Stop finishes in-flight calls and closes every listener
func (s *Server) Stop() {
	s.grpc.GracefulStop()
}

// Simulate implements SimulatorServer
func (s *Server) Simulate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req SimulateRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	doc, err := s.svc.Simulate(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(doc)
}

// Compare implements SimulatorServer
func (s *Server) Compare(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req CompareRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	doc, err := s.svc.Compare(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(doc)
}

func toStatus(err error) error {
	switch {
	case IsInvalidArgument(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

func loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	log.Info("gRPC call", "method", info.FullMethod, "code", status.Code(err).String(), "elapsed", time.Since(start))
	return resp, err
}

// toStruct converts v through its JSON form
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return structpb.NewStruct(m)
}

// fromStruct decodes s into v through its JSON form
func fromStruct(s *structpb.Struct, v any) error {
	data, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
