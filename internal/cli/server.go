package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/openexch/marketd/internal/config"
	"github.com/openexch/marketd/internal/core/exchange"
	"github.com/openexch/marketd/internal/core/registry/memory"
	"github.com/openexch/marketd/internal/events"
	adminrpc "github.com/openexch/marketd/internal/grpc"
	"github.com/openexch/marketd/internal/journal"
	"github.com/openexch/marketd/internal/rpc"
	"github.com/openexch/marketd/internal/storage"
)

// serverCmd starts the exchange node. It is also the default action of the
// bare marketd command.
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the exchange node",
	Long: `Start the marketd node which provides:
- HTTP JSON-RPC API (list, buy, cancel, get_offer, server_info)
- WebSocket stream of listed/sold/canceled events
- Optional gRPC admin endpoint
- Persistent offer book and event journal`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServer(cmd, args)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	node, err := buildNode(ctx, cfg)
	if err != nil {
		return err
	}
	defer node.close()

	if !quiet {
		fmt.Printf("marketd %s\n", Version)
		fmt.Printf("  - JSON-RPC:  http://%s/\n", cfg.RPC.Address())
		if cfg.WS.Enabled {
			fmt.Printf("  - WebSocket: ws://%s/\n", cfg.WS.Address())
		}
		if cfg.Grpc.Enabled {
			fmt.Printf("  - gRPC:      %s\n", cfg.Grpc.Address)
		}
		fmt.Printf("  - Offer store: %s\n", cfg.OfferStore.Type)
	}

	return node.run(ctx, cfg)
}

// node holds everything the server command wires together.
type node struct {
	registry  *memory.AssetRegistry
	bank      *memory.Bank
	publisher *events.Publisher
	backend   storage.Backend
	journal   *journal.Journal
	recorder  *journal.Recorder
	service   *exchange.Service
	rpcServer *rpc.Server
	wsServer  *rpc.WebSocketServer
	admin     *adminrpc.Server
}

func buildNode(ctx context.Context, cfg *config.Config) (*node, error) {
	n := &node{
		registry:  memory.NewAssetRegistry(),
		bank:      memory.NewBank(),
		publisher: events.NewPublisher(),
	}
	for _, seed := range cfg.Standalone.Assets {
		n.registry.Mint(seed.Asset, seed.AssetID, seed.Owner)
	}

	backend, err := storage.Open(storage.Config{Type: cfg.OfferStore.Type, Path: cfg.OfferStore.Path})
	if err != nil {
		return nil, fmt.Errorf("opening offer store: %w", err)
	}
	n.backend = backend

	engine, err := exchange.NewEngine(n.registry, n.bank,
		exchange.WithStore(storage.NewOfferStore(backend)),
		exchange.WithPublisher(n.publisher),
	)
	if err != nil {
		n.close()
		return nil, err
	}
	n.service = exchange.NewService(engine)

	if cfg.Journal.Enabled {
		j, err := journal.Open(ctx, journal.Config{Driver: cfg.Journal.Driver, DSN: cfg.Journal.DSN})
		if err != nil {
			n.close()
			return nil, fmt.Errorf("opening journal: %w", err)
		}
		n.journal = j
		n.recorder = journal.NewRecorder(j, n.publisher)
	}

	rpcServer, err := rpc.NewServer(&rpc.Services{
		Exchange:  n.service,
		Publisher: n.publisher,
		Version:   Version,
		Started:   time.Now(),
	})
	if err != nil {
		n.close()
		return nil, err
	}
	n.rpcServer = rpcServer

	if cfg.WS.Enabled {
		n.wsServer = rpc.NewWebSocketServer(n.publisher)
	}

	if cfg.Grpc.Enabled {
		adminOpts := []adminrpc.ServerOption{
			adminrpc.WithPublisher(n.publisher),
			adminrpc.WithVersion(Version),
		}
		if n.journal != nil {
			adminOpts = append(adminOpts, adminrpc.WithJournal(n.journal))
		}
		admin, err := adminrpc.NewServer(&adminrpc.ServerConfig{
			Address:        cfg.Grpc.Address,
			MaxRecvMsgSize: cfg.Grpc.MaxRecvMsgSize,
			MaxSendMsgSize: cfg.Grpc.MaxSendMsgSize,
		}, n.service, adminOpts...)
		if err != nil {
			n.close()
			return nil, err
		}
		n.admin = admin
	}

	return n, nil
}

// run serves until the context is canceled, then shuts everything down.
func (n *node) run(ctx context.Context, cfg *config.Config) error {
	g, ctx := errgroup.WithContext(ctx)

	httpServer := &http.Server{Addr: cfg.RPC.Address(), Handler: n.rpcServer}
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("rpc server: %w", err)
		}
		return nil
	})

	var wsHTTPServer *http.Server
	if n.wsServer != nil {
		wsHTTPServer = &http.Server{Addr: cfg.WS.Address(), Handler: n.wsServer}
		g.Go(func() error {
			if err := wsHTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("ws server: %w", err)
			}
			return nil
		})
	}

	if n.admin != nil {
		g.Go(func() error {
			if err := n.admin.Start(); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Println("marketd: shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		httpServer.Shutdown(shutdownCtx)
		if wsHTTPServer != nil {
			wsHTTPServer.Shutdown(shutdownCtx)
		}
		if n.admin != nil {
			n.admin.Stop()
		}
		return nil
	})

	return g.Wait()
}

// close releases resources in dependency order.
func (n *node) close() {
	if n.recorder != nil {
		n.recorder.Close()
	}
	if n.journal != nil {
		n.journal.Close()
	}
	if n.service != nil {
		n.service.Close()
	}
	if n.backend != nil {
		n.backend.Close()
	}
}
