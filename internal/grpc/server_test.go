package grpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/openexch/marketd/internal/core/exchange"
	"github.com/openexch/marketd/internal/core/registry/memory"
	"github.com/openexch/marketd/internal/events"
)

func newTestAdmin(t *testing.T) (*Server, *memory.AssetRegistry, *exchange.Service) {
	t.Helper()

	reg := memory.NewAssetRegistry()
	bank := memory.NewBank()

	engine, err := exchange.NewEngine(reg, bank)
	require.NoError(t, err)
	service := exchange.NewService(engine)
	t.Cleanup(service.Close)

	server, err := NewServer(nil, service, WithVersion("test"), WithPublisher(events.NewPublisher()))
	require.NoError(t, err)
	return server, reg, service
}

func TestServerConfigValidation(t *testing.T) {
	assert.NoError(t, DefaultServerConfig().Validate())

	cfg := &ServerConfig{Address: "not-an-address", MaxRecvMsgSize: 1, MaxSendMsgSize: 1}
	assert.Error(t, cfg.Validate())

	cfg = &ServerConfig{Address: "127.0.0.1:50051", MaxRecvMsgSize: 0, MaxSendMsgSize: 1}
	assert.Error(t, cfg.Validate())
}

func TestGetStatus(t *testing.T) {
	server, reg, service := newTestAdmin(t)
	reg.Mint("gallery", "42", "alice")

	res, err := service.Submit(context.Background(), exchange.NewOfferCreate("alice", "gallery", "42", 1000))
	require.NoError(t, err)
	require.True(t, res.Applied)

	resp, err := server.GetStatus(context.Background(), &GetStatusRequest{})
	require.NoError(t, err)
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, 1, resp.ActiveOffers)
	assert.Equal(t, -1, resp.JournaledEvents, "no journal attached")
}

func TestGetOfferAdmin(t *testing.T) {
	server, reg, service := newTestAdmin(t)
	reg.Mint("gallery", "42", "alice")

	_, err := server.GetOffer(context.Background(), &GetOfferRequest{Asset: "gallery", AssetID: "42"})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = server.GetOffer(context.Background(), &GetOfferRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	res, err := service.Submit(context.Background(), exchange.NewOfferCreate("alice", "gallery", "42", 1000))
	require.NoError(t, err)
	require.True(t, res.Applied)

	resp, err := server.GetOffer(context.Background(), &GetOfferRequest{Asset: "gallery", AssetID: "42"})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Seller)
	assert.Equal(t, uint64(1000), resp.Price)
}

func TestListOffers(t *testing.T) {
	server, reg, service := newTestAdmin(t)
	for _, id := range []string{"1", "2", "3"} {
		reg.Mint("gallery", id, "alice")
		res, err := service.Submit(context.Background(), exchange.NewOfferCreate("alice", "gallery", id, 100))
		require.NoError(t, err)
		require.True(t, res.Applied)
	}

	resp, err := server.ListOffers(context.Background(), &ListOffersRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	assert.Len(t, resp.Offers, 3)

	resp, err = server.ListOffers(context.Background(), &ListOffersRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	assert.Len(t, resp.Offers, 2)
}

func TestReplayEventsWithoutJournal(t *testing.T) {
	server, _, _ := newTestAdmin(t)

	_, err := server.ReplayEvents(context.Background(), &ReplayEventsRequest{})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestServerLifecycle(t *testing.T) {
	server, _, _ := newTestAdmin(t)
	server.config.Address = "127.0.0.1:0"

	require.NoError(t, server.StartAsync())
	assert.True(t, server.IsRunning())
	assert.NotEmpty(t, server.Address())

	assert.Error(t, server.StartAsync(), "double start must fail")

	server.Stop()
	assert.False(t, server.IsRunning())
}
