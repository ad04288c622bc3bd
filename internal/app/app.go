package app

import (
	"fmt"
	"net"
	"net/http"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"

	"github.com/akarpov/urlmap/internal/config"
	"github.com/akarpov/urlmap/internal/handler"
	"github.com/akarpov/urlmap/internal/proto"
	"github.com/akarpov/urlmap/internal/service"
	"github.com/akarpov/urlmap/internal/storage"
	"github.com/akarpov/urlmap/internal/storage/file"
	"github.com/akarpov/urlmap/internal/storage/memory"
	"github.com/akarpov/urlmap/internal/storage/postgres"
)

// App wires the configured storage backend into the workflows and the
// HTTP and gRPC surfaces.
type App struct {
	config  *config.Config
	handler http.Handler
	grpcSrv *grpc.Server
}

// NewApp selects a storage backend (Postgres when a DSN is configured,
// a JSONL file when a path is, the in-memory store otherwise) and
// builds the request surfaces on top of it.
func NewApp(cfg *config.Config) (*App, error) {
	var (
		mappings    storage.MappingStore
		credentials storage.CredentialStore
		pinger      handler.Pinger
	)

	switch {
	case cfg.DatabaseDSN != "":
		pg, err := postgres.NewStorage(cfg.DatabaseDSN, cfg.URLTable, cfg.UserTable)
		if err != nil {
			return nil, fmt.Errorf("error initializing postgres storage: %w", err)
		}
		mappings, credentials, pinger = pg, pg, pg
		log.Info().Str("urlTable", cfg.URLTable).Str("userTable", cfg.UserTable).
			Msg("Using postgres storage")

	case cfg.FileStoragePath != "":
		fs, err := file.NewStorage(cfg.FileStoragePath)
		if err != nil {
			return nil, fmt.Errorf("error initializing file storage: %w", err)
		}
		mappings, pinger = fs, fs
		credentials = seededCredentials(cfg)
		log.Info().Str("path", cfg.FileStoragePath).Msg("Using file storage")

	default:
		mem := memory.NewStorage()
		seedCredentials(mem, cfg)
		mappings, credentials, pinger = mem, mem, mem
		log.Info().Msg("Using in-memory storage")
	}

	urlService := service.NewService(mappings, credentials)

	httpHandler := handler.NewHandler(urlService, pinger, cfg.BaseURL)

	var grpcSrv *grpc.Server
	if cfg.GRPCAddress != "" {
		grpcSrv = grpc.NewServer()
		proto.RegisterShortenerServiceServer(grpcSrv, handler.NewShortenerGRPCServer(urlService, cfg.BaseURL))
	}

	return &App{
		config:  cfg,
		handler: httpHandler.RegisterRoutes(),
		grpcSrv: grpcSrv,
	}, nil
}

func seededCredentials(cfg *config.Config) *memory.Storage {
	mem := memory.NewStorage()
	seedCredentials(mem, cfg)
	return mem
}

func seedCredentials(mem *memory.Storage, cfg *config.Config) {
	if cfg.AdminUser != "" && cfg.AdminPassword != "" {
		mem.AddCredential(cfg.AdminUser, cfg.AdminPassword)
	}
}

// Run starts the gRPC listener when configured and blocks serving HTTP.
func (a *App) Run() error {
	if a.grpcSrv != nil {
		listener, err := net.Listen("tcp", a.config.GRPCAddress)
		if err != nil {
			return fmt.Errorf("error listening on gRPC address: %w", err)
		}

		go func() {
			log.Info().Str("address", a.config.GRPCAddress).Msg("Starting gRPC server")
			if err := a.grpcSrv.Serve(listener); err != nil {
				log.Error().Err(err).Msg("gRPC server stopped")
			}
		}()
	}

	log.Info().Str("address", a.config.ServerAddress).Str("baseURL", a.config.BaseURL).
		Msg("Starting HTTP server")
	return http.ListenAndServe(a.config.ServerAddress, a.handler)
}
