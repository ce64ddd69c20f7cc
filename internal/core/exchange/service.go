package exchange

import (
	"context"
	"errors"
)

// ErrServiceClosed is returned by Submit after the service stops.
var ErrServiceClosed = errors.New("exchange service closed")

// Service serializes operation submission onto a single worker goroutine, so
// calls against one engine run to completion one at a time regardless of how
// many RPC connections submit concurrently. Reads bypass the queue.
type Service struct {
	engine *Engine
	subCh  chan submission
	done   chan struct{}
}

type submission struct {
	ctx    context.Context
	op     Operation
	result chan ApplyResult
}

// NewService creates and starts a service around the engine.
func NewService(engine *Engine) *Service {
	s := &Service{
		engine: engine,
		subCh:  make(chan submission),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Service) run() {
	for {
		select {
		case sub := <-s.subCh:
			// The submitter may have gone away while queued.
			select {
			case <-sub.ctx.Done():
			default:
				sub.result <- s.engine.Submit(sub.ctx, sub.op)
			}
		case <-s.done:
			return
		}
	}
}

// Submit queues an operation and waits for its result. The context covers
// both queueing time and the operation itself.
func (s *Service) Submit(ctx context.Context, op Operation) (ApplyResult, error) {
	sub := submission{ctx: ctx, op: op, result: make(chan ApplyResult, 1)}

	select {
	case s.subCh <- sub:
	case <-ctx.Done():
		return ApplyResult{}, ctx.Err()
	case <-s.done:
		return ApplyResult{}, ErrServiceClosed
	}

	select {
	case res := <-sub.result:
		return res, nil
	case <-ctx.Done():
		return ApplyResult{}, ctx.Err()
	case <-s.done:
		return ApplyResult{}, ErrServiceClosed
	}
}

// GetOffer reads the offer book directly; reads are not serialized through
// the worker.
func (s *Service) GetOffer(asset, assetID string) Offer {
	return s.engine.GetOffer(asset, assetID)
}

// ActiveOffers returns the number of active offers.
func (s *Service) ActiveOffers() int {
	return s.engine.ActiveOffers()
}

// Offers returns a snapshot of every active offer.
func (s *Service) Offers() []Offer {
	return s.engine.Offers()
}

// Close stops the worker. In-flight submissions receive ErrServiceClosed.
func (s *Service) Close() {
	close(s.done)
}
