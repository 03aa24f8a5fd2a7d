// internal/application/statemachine.go
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/twinkleshop/shopapp-orders/internal/domain"
	"github.com/twinkleshop/shopapp-orders/internal/ports"
)

// TransitionState tags the lifecycle of one requested transition.
type TransitionState int

const (
	// TransitionProvisional carries the optimistic copy while the gateway
	// call is in flight. Display only; never persisted.
	TransitionProvisional TransitionState = iota
	// TransitionConfirmed carries the server-returned order, which replaces
	// any local state.
	TransitionConfirmed
	// TransitionFailed carries the original, unmodified order and the
	// failure kind.
	TransitionFailed
)

type TransitionResult struct {
	State TransitionState
	Order domain.Order
	Ack   string
	Err   error
}

// StateMachine validates fulfillment transitions locally and reconciles them
// against the gateway. The server-confirmed order is always the terminal
// record: a transition is never committed from local computation alone, so a
// losing race between two operators surfaces as ErrConflict instead of a
// silent overwrite.
type StateMachine struct {
	gateway ports.OrderGatewayPort
	log     zerolog.Logger

	// OnUpdate, when set, observes every tagged state the transition passes
	// through: Provisional before the gateway call, then Confirmed or Failed.
	OnUpdate func(TransitionResult)
}

func NewStateMachine(gateway ports.OrderGatewayPort, log zerolog.Logger) *StateMachine {
	return &StateMachine{gateway: gateway, log: log}
}

// RequestTransition moves order to target. An illegal target fails with
// ErrIllegalTransition before any gateway call; gateway failures leave the
// order untouched and surface the failure kind.
func (m *StateMachine) RequestTransition(ctx context.Context, order domain.Order, target domain.OrderStatus) (TransitionResult, error) {
	if !domain.CanTransition(order.Status, target) {
		res := TransitionResult{State: TransitionFailed, Order: order, Err: domain.ErrIllegalTransition}
		m.emit(res)
		return res, domain.ErrIllegalTransition
	}

	optimistic := order
	optimistic.Status = target
	m.emit(TransitionResult{State: TransitionProvisional, Order: optimistic})

	confirmed, err := m.gateway.ApplyTransition(ctx, order.ID, target)
	if err != nil {
		m.log.Warn().Int64("order_id", order.ID).
			Str("from", order.Status.String()).
			Str("to", target.String()).
			Err(err).Msg("transition rejected")
		res := TransitionResult{State: TransitionFailed, Order: order, Err: err}
		m.emit(res)
		return res, err
	}

	ack, err := domain.AckLabel(confirmed.Status)
	if err != nil {
		// The server answered with a status outside the lifecycle. Surface
		// it instead of acknowledging something we cannot name.
		res := TransitionResult{State: TransitionFailed, Order: order, Err: err}
		m.emit(res)
		return res, err
	}

	m.log.Info().Int64("order_id", confirmed.ID).
		Str("status", confirmed.Status.String()).
		Msg("transition confirmed")
	res := TransitionResult{State: TransitionConfirmed, Order: *confirmed, Ack: ack}
	m.emit(res)
	return res, nil
}

func (m *StateMachine) emit(res TransitionResult) {
	if m.OnUpdate != nil {
		m.OnUpdate(res)
	}
}
