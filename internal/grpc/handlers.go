package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/openexch/marketd/internal/events"
)

// GetStatusRequest requests node status.
type GetStatusRequest struct{}

// GetStatusResponse carries node status.
type GetStatusResponse struct {
	// Version is the build version.
	Version string

	// ActiveOffers is the number of live listings.
	ActiveOffers int

	// Subscribers is the number of live event subscribers.
	Subscribers int

	// JournaledEvents is the event journal length, -1 when no journal is
	// attached.
	JournaledEvents int
}

// GetStatus reports node status.
func (s *Server) GetStatus(ctx context.Context, req *GetStatusRequest) (*GetStatusResponse, error) {
	if s.exchangeService == nil {
		return nil, status.Error(codes.Internal, "exchange service not available")
	}

	resp := &GetStatusResponse{
		Version:         s.version,
		ActiveOffers:    s.exchangeService.ActiveOffers(),
		JournaledEvents: -1,
	}
	if s.publisher != nil {
		resp.Subscribers = s.publisher.SubscriberCount()
	}
	if s.journal != nil {
		n, err := s.journal.Len(ctx)
		if err != nil {
			return nil, status.Error(codes.Internal, "journal unavailable")
		}
		resp.JournaledEvents = n
	}
	return resp, nil
}

// GetOfferRequest identifies one offer slot.
type GetOfferRequest struct {
	Asset   string
	AssetID string
}

// GetOfferResponse carries one active offer.
type GetOfferResponse struct {
	Seller  string
	Asset   string
	AssetID string
	Price   uint64
}

// GetOffer reads one offer slot. Unlike the public get_offer RPC, an inactive
// slot is a NotFound error here; admin tooling wants the distinction loud.
func (s *Server) GetOffer(ctx context.Context, req *GetOfferRequest) (*GetOfferResponse, error) {
	if s.exchangeService == nil {
		return nil, status.Error(codes.Internal, "exchange service not available")
	}
	if req.Asset == "" || req.AssetID == "" {
		return nil, status.Error(codes.InvalidArgument, "asset and asset_id are required")
	}

	offer := s.exchangeService.GetOffer(req.Asset, req.AssetID)
	if !offer.IsActive() {
		return nil, status.Error(codes.NotFound, "no active offer for asset")
	}
	return &GetOfferResponse{
		Seller:  offer.Seller,
		Asset:   offer.Asset,
		AssetID: offer.AssetID,
		Price:   offer.Price,
	}, nil
}

// ListOffersRequest requests a book snapshot.
type ListOffersRequest struct {
	// Limit caps the number of returned offers. Zero means no cap.
	Limit int
}

// ListOffersResponse carries a book snapshot.
type ListOffersResponse struct {
	Offers []GetOfferResponse
	Total  int
}

// ListOffers returns a snapshot of the offer book.
func (s *Server) ListOffers(ctx context.Context, req *ListOffersRequest) (*ListOffersResponse, error) {
	if s.exchangeService == nil {
		return nil, status.Error(codes.Internal, "exchange service not available")
	}

	offers := s.exchangeService.Offers()
	resp := &ListOffersResponse{Total: len(offers)}
	for _, o := range offers {
		if req.Limit > 0 && len(resp.Offers) >= req.Limit {
			break
		}
		resp.Offers = append(resp.Offers, GetOfferResponse{
			Seller:  o.Seller,
			Asset:   o.Asset,
			AssetID: o.AssetID,
			Price:   o.Price,
		})
	}
	return resp, nil
}

// ReplayEventsRequest asks for journaled events after a sequence number.
type ReplayEventsRequest struct {
	AfterSeq uint64
	Limit    int
}

// ReplayEventsResponse carries replayed events.
type ReplayEventsResponse struct {
	Events []ReplayedEvent
}

// ReplayedEvent is one journaled notification.
type ReplayedEvent struct {
	Type      string
	Seq       uint64
	Seller    string
	Buyer     string
	Asset     string
	AssetID   string
	Price     uint64
	Timestamp time.Time
}

// ReplayEvents reads back journaled notifications. Requires a journal.
func (s *Server) ReplayEvents(ctx context.Context, req *ReplayEventsRequest) (*ReplayEventsResponse, error) {
	if s.journal == nil {
		return nil, status.Error(codes.Unimplemented, "no event journal configured")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	evs, err := s.journal.After(ctx, req.AfterSeq, limit)
	if err != nil {
		return nil, status.Error(codes.Internal, "journal read failed")
	}

	resp := &ReplayEventsResponse{Events: make([]ReplayedEvent, 0, len(evs))}
	for _, ev := range evs {
		resp.Events = append(resp.Events, replayedEvent(ev))
	}
	return resp, nil
}

func replayedEvent(ev events.Event) ReplayedEvent {
	return ReplayedEvent{
		Type:      string(ev.Type),
		Seq:       ev.Seq,
		Seller:    ev.Seller,
		Buyer:     ev.Buyer,
		Asset:     ev.Asset,
		AssetID:   ev.AssetID,
		Price:     ev.Price,
		Timestamp: ev.Timestamp,
	}
}
