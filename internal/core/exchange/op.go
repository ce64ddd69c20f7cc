package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openexch/marketd/internal/core/registry"
	"github.com/openexch/marketd/internal/events"
)

// Type identifies an operation type.
type Type string

const (
	// TypeOfferCreate lists an asset for sale at a fixed price.
	TypeOfferCreate Type = "OfferCreate"

	// TypeOfferAccept buys a listed asset at exactly its asking price.
	TypeOfferAccept Type = "OfferAccept"

	// TypeOfferCancel withdraws an active offer.
	TypeOfferCancel Type = "OfferCancel"
)

// ErrUnknownOperationType is returned when an operation type is unknown.
var ErrUnknownOperationType = errors.New("unknown operation type")

// Common contains fields shared by all operation types.
type Common struct {
	// Account is the caller identity the operation executes as.
	Account string `json:"Account"`

	// OperationType names the operation for wire dispatch.
	OperationType string `json:"OperationType"`
}

// Validate checks the common fields.
func (c *Common) Validate() error {
	if c.Account == "" {
		return errors.New("temBAD_ACCOUNT: Account is required")
	}
	return nil
}

// Operation is the interface all exchange operations implement. Validate
// rejects malformed operations (tem codes) without touching state; Apply
// executes against the ledger through an ApplyContext and returns a result
// code.
type Operation interface {
	// OpType returns the operation type.
	OpType() Type

	// GetCommon returns the common operation fields.
	GetCommon() *Common

	// Validate checks that the operation is well formed.
	Validate() error

	// Apply executes the operation against ledger state.
	Apply(ctx *ApplyContext) Result
}

// ApplyContext provides the state and collaborators an operation needs while
// applying. It is created by the engine per operation.
type ApplyContext struct {
	// Ctx carries cancellation for collaborator calls.
	Ctx context.Context

	// View is the tracked offer-book view; all state access goes through it.
	View *stateTable

	// Caller is the validated caller identity.
	Caller string

	// Registry is the external ownership oracle.
	Registry registry.AssetRegistry

	// Bank is the external value channel.
	Bank registry.ValueChannel

	pending []events.Event
}

// Emit queues a notification. Queued events are published only if the whole
// operation commits, in the order they were emitted.
func (ctx *ApplyContext) Emit(ev events.Event) {
	ctx.pending = append(ctx.pending, ev)
}

// FromJSON decodes an operation from its JSON wire form, dispatching on
// OperationType.
func FromJSON(data []byte) (Operation, error) {
	var raw struct {
		OperationType string `json:"OperationType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	op, err := NewFromType(Type(raw.OperationType))
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, op); err != nil {
		return nil, err
	}
	return op, nil
}

// NewFromType creates a zero operation of the given type.
func NewFromType(t Type) (Operation, error) {
	switch t {
	case TypeOfferCreate:
		return &OfferCreate{Common: Common{OperationType: string(TypeOfferCreate)}}, nil
	case TypeOfferAccept:
		return &OfferAccept{Common: Common{OperationType: string(TypeOfferAccept)}}, nil
	case TypeOfferCancel:
		return &OfferCancel{Common: Common{OperationType: string(TypeOfferCancel)}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperationType, t)
	}
}

// resultFromValidation maps a Validate error onto its tem result code.
// Validation errors carry their code as a "temXXX:" prefix.
func resultFromValidation(err error) Result {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "temBAD_PRICE"):
		return TemBAD_PRICE
	case strings.HasPrefix(msg, "temBAD_ACCOUNT"):
		return TemBAD_ACCOUNT
	case strings.HasPrefix(msg, "temBAD_ASSET"):
		return TemBAD_ASSET
	default:
		return TemMALFORMED
	}
}
