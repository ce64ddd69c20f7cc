package grpc

import (
	"context"
	"errors"
	"net"
	"sync"

	"google.golang.org/grpc"

	"github.com/openexch/marketd/internal/core/exchange"
	"github.com/openexch/marketd/internal/events"
	"github.com/openexch/marketd/internal/journal"
)

// ExchangeServiceInterface defines the exchange operations the admin handlers
// need. It is implemented by *exchange.Service.
type ExchangeServiceInterface interface {
	// GetOffer reads one offer slot.
	GetOffer(asset, assetID string) exchange.Offer

	// Offers returns a snapshot of every active offer.
	Offers() []exchange.Offer

	// ActiveOffers returns the number of active offers.
	ActiveOffers() int
}

// Server is the gRPC admin server. Handlers are plain methods on the server;
// callers reach them through GetGRPCServer when wiring a service description,
// or directly in-process.
type Server struct {
	mu sync.RWMutex

	grpcServer *grpc.Server
	config     *ServerConfig
	listener   net.Listener
	running    bool

	exchangeService ExchangeServiceInterface
	publisher       *events.Publisher
	journal         *journal.Journal
	version         string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithJournal attaches the event journal so admin clients can replay
// notifications.
func WithJournal(j *journal.Journal) ServerOption {
	return func(s *Server) { s.journal = j }
}

// WithPublisher attaches the event publisher for subscriber stats.
func WithPublisher(p *events.Publisher) ServerOption {
	return func(s *Server) { s.publisher = p }
}

// WithVersion sets the version string reported by GetStatus.
func WithVersion(version string) ServerOption {
	return func(s *Server) { s.version = version }
}

// NewServer creates a gRPC admin server.
func NewServer(cfg *ServerConfig, exchangeSvc ExchangeServiceInterface, opts ...ServerOption) (*Server, error) {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(cfg.MaxSendMsgSize),
	)

	server := &Server{
		grpcServer:      grpcServer,
		config:          cfg,
		exchangeService: exchangeSvc,
	}
	for _, opt := range opts {
		opt(server)
	}
	return server, nil
}

// Start starts the server and blocks until it is stopped.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server is already running")
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	return s.grpcServer.Serve(listener)
}

// StartAsync starts the server in a goroutine and returns immediately.
func (s *Server) StartAsync() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server is already running")
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	go func() {
		_ = s.grpcServer.Serve(listener)
	}()
	return nil
}

// Stop gracefully stops the server, letting in-flight calls finish.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.grpcServer.GracefulStop()
	s.running = false
}

// StopNow immediately stops the server without draining connections.
func (s *Server) StopNow() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.grpcServer.Stop()
	s.running = false
}

// IsRunning reports whether the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Address returns the bound listen address, or "" before Start.
func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// GetGRPCServer returns the underlying grpc.Server so additional services can
// be registered before Start.
func (s *Server) GetGRPCServer() *grpc.Server {
	return s.grpcServer
}

// UnaryServerInterceptor returns an interceptor hook point for logging and
// auth.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		return handler(ctx, req)
	}
}
