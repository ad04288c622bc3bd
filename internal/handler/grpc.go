package handler

import (
	"context"
	"errors"
	"net/url"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/akarpov/urlmap/internal/proto"
	"github.com/akarpov/urlmap/internal/service"
)

// ShortenerGRPCServer exposes the shorten, resolve, and delete
// workflows over gRPC, mirroring the HTTP surface.
type ShortenerGRPCServer struct {
	proto.UnimplementedShortenerServiceServer
	urlService URLService
	baseURL    string
}

func NewShortenerGRPCServer(urlService URLService, baseURL string) *ShortenerGRPCServer {
	return &ShortenerGRPCServer{
		urlService: urlService,
		baseURL:    baseURL,
	}
}

func (s *ShortenerGRPCServer) Shorten(ctx context.Context, req *proto.ShortenRequest) (*proto.ShortenResponse, error) {
	code, err := s.urlService.Shorten(ctx, req.Url)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyURL):
			return nil, status.Error(codes.InvalidArgument, "url is required")
		case errors.Is(err, service.ErrCodeSpaceExhausted):
			return nil, status.Error(codes.ResourceExhausted, "no unused short code available")
		default:
			return nil, status.Errorf(codes.Internal, "failed to shorten URL: %v", err)
		}
	}

	shortURL, jerr := url.JoinPath(s.baseURL, code)
	if jerr != nil {
		shortURL = s.baseURL + "/" + code
	}

	return &proto.ShortenResponse{Result: shortURL}, nil
}

func (s *ShortenerGRPCServer) Resolve(ctx context.Context, req *proto.ResolveRequest) (*proto.ResolveResponse, error) {
	if req.Code == "" {
		return nil, status.Error(codes.InvalidArgument, "code is required")
	}

	target, found := s.urlService.Resolve(ctx, req.Code)
	if !found {
		return nil, status.Error(codes.NotFound, "no URL assigned to that shortcode")
	}

	return &proto.ResolveResponse{Url: target}, nil
}

func (s *ShortenerGRPCServer) Delete(ctx context.Context, req *proto.DeleteRequest) (*emptypb.Empty, error) {
	if req.Code == "" {
		return nil, status.Error(codes.InvalidArgument, "code is required")
	}

	err := s.urlService.Delete(ctx, req.Code, req.Username, req.Password)
	switch {
	case err == nil:
		return &emptypb.Empty{}, nil
	case errors.Is(err, service.ErrUnauthorized):
		return nil, status.Error(codes.PermissionDenied, "wrong username or password")
	case errors.Is(err, service.ErrNotFound):
		return nil, status.Error(codes.NotFound, "unable to find or delete the shortcode")
	default:
		return nil, status.Errorf(codes.Internal, "failed to delete mapping: %v", err)
	}
}
