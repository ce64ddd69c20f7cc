package rpc

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/openexch/marketd/internal/core/exchange"
)

// operationCacheSize bounds the recent-operation cache served by
// operation_info.
const operationCacheSize = 512

// OperationRecord is a cached submission outcome.
type OperationRecord struct {
	OperationID string       `json:"operation_id"`
	Type        string       `json:"operation_type"`
	Account     string       `json:"account"`
	Result      EngineResult `json:"result"`
	SubmittedAt time.Time    `json:"submitted_at"`
}

// Methods implements the exchange RPC method set.
type Methods struct {
	services *Services
	recent   *lru.Cache[string, OperationRecord]
	nextID   atomic.Uint64
}

// NewMethods builds the method set and registers it on the registry.
func NewMethods(services *Services, registry *MethodRegistry) (*Methods, error) {
	recent, err := lru.New[string, OperationRecord](operationCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating operation cache: %w", err)
	}

	m := &Methods{services: services, recent: recent}

	registry.Register("list", MethodFunc(m.List))
	registry.Register("buy", MethodFunc(m.Buy))
	registry.Register("cancel", MethodFunc(m.Cancel))
	registry.Register("get_offer", MethodFunc(m.GetOffer))
	registry.Register("operation_info", MethodFunc(m.OperationInfo))
	registry.Register("server_info", MethodFunc(m.ServerInfo))
	registry.Register("ping", MethodFunc(m.Ping))
	return m, nil
}

// ListParams are the parameters of the list method.
type ListParams struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	AssetID string `json:"asset_id"`
	Price   uint64 `json:"price"`
}

// List submits an OfferCreate: the caller lists an asset it owns at a fixed
// price.
func (m *Methods) List(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var p ListParams
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	if p.Account == "" {
		return nil, RpcErrorMissingField("account")
	}
	op := exchange.NewOfferCreate(p.Account, p.Asset, p.AssetID, p.Price)
	return m.submit(ctx, op)
}

// BuyParams are the parameters of the buy method.
type BuyParams struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	AssetID string `json:"asset_id"`
	Payment uint64 `json:"payment"`
}

// Buy submits an OfferAccept: the caller purchases a listed asset by paying
// exactly its asking price.
func (m *Methods) Buy(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var p BuyParams
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	if p.Account == "" {
		return nil, RpcErrorMissingField("account")
	}
	op := exchange.NewOfferAccept(p.Account, p.Asset, p.AssetID, p.Payment)
	return m.submit(ctx, op)
}

// CancelParams are the parameters of the cancel method.
type CancelParams struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	AssetID string `json:"asset_id"`
}

// Cancel submits an OfferCancel: the seller withdraws its own active offer.
func (m *Methods) Cancel(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var p CancelParams
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	if p.Account == "" {
		return nil, RpcErrorMissingField("account")
	}
	op := exchange.NewOfferCancel(p.Account, p.Asset, p.AssetID)
	return m.submit(ctx, op)
}

// submit runs an operation through the exchange service and caches the
// outcome for operation_info.
func (m *Methods) submit(ctx *RpcContext, op exchange.Operation) (interface{}, *RpcError) {
	res, err := m.services.Exchange.Submit(ctx.Context, op)
	if err != nil {
		return nil, RpcErrorInternal(err.Error())
	}

	opID := fmt.Sprintf("%s-%d", op.OpType(), m.nextID.Add(1))
	record := OperationRecord{
		OperationID: opID,
		Type:        string(op.OpType()),
		Account:     op.GetCommon().Account,
		Result:      engineResult(res, opID),
		SubmittedAt: time.Now().UTC(),
	}
	m.recent.Add(opID, record)

	return record.Result, nil
}

// GetOfferParams are the parameters of the get_offer method.
type GetOfferParams struct {
	Asset   string `json:"asset"`
	AssetID string `json:"asset_id"`
}

// GetOfferResult is the get_offer response.
type GetOfferResult struct {
	// Active reports whether a live listing exists at the key. When false
	// the offer fields carry the zero sentinel.
	Active bool           `json:"active"`
	Offer  exchange.Offer `json:"offer"`
}

// GetOffer reads one offer slot. Absent and cleared slots both come back as
// the zero offer with active=false.
func (m *Methods) GetOffer(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var p GetOfferParams
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	offer := m.services.Exchange.GetOffer(p.Asset, p.AssetID)
	return GetOfferResult{Active: offer.IsActive(), Offer: offer}, nil
}

// OperationInfoParams are the parameters of the operation_info method.
type OperationInfoParams struct {
	OperationID string `json:"operation_id"`
}

// OperationInfo looks up a recently submitted operation by its ID. The cache
// is bounded; old entries age out.
func (m *Methods) OperationInfo(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	var p OperationInfoParams
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	if p.OperationID == "" {
		return nil, RpcErrorMissingField("operation_id")
	}

	record, ok := m.recent.Get(p.OperationID)
	if !ok {
		return nil, RpcErrorObjectNotFound("Operation not found: " + p.OperationID)
	}
	return record, nil
}

// ServerInfoResult is the server_info response.
type ServerInfoResult struct {
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	ActiveOffers  int    `json:"active_offers"`
	Subscribers   int    `json:"subscribers"`
}

// ServerInfo reports node status.
func (m *Methods) ServerInfo(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return ServerInfoResult{
		Version:       m.services.Version,
		UptimeSeconds: int64(time.Since(m.services.Started).Seconds()),
		ActiveOffers:  m.services.Exchange.ActiveOffers(),
		Subscribers:   m.services.Publisher.SubscriberCount(),
	}, nil
}

// Ping answers with an empty result.
func (m *Methods) Ping(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
	return map[string]interface{}{}, nil
}

// decodeParams unmarshals the params object. Nil params decode as all-zero,
// leaving the per-method required-field checks to complain.
func decodeParams(params json.RawMessage, dst interface{}) *RpcError {
	if params == nil {
		return nil
	}
	if err := json.Unmarshal(params, dst); err != nil {
		return RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	return nil
}
