// Package counter holds the counter service used by the xactor command and
// the integration tests.
package counter

import (
	"context"
	"log/slog"

	"github.com/GopherJ/xactor/core/actor"
)

type (
	// Increment raises the counter by Amount, or by 1 when Amount is 0.
	Increment struct {
		Amount int `json:"amount,omitempty"`
	}

	// GetValue reads the counter.
	GetValue struct{}

	// Value is the reply to both messages.
	Value struct {
		Value int `json:"value"`
	}
)

// Counter is an in-memory counter service. Its zero value starts at 0.
type Counter struct {
	value int
}

func (c *Counter) Handlers() []actor.HandlerRegistration {
	return []actor.HandlerRegistration{
		actor.Init(func(hc actor.HandlerCtx) error {
			hc.Log().Debug("counter started")
			return nil
		}),
		actor.HandleRequest[Increment, Value](func(hc actor.HandlerCtx, cmd Increment) (*Value, error) {
			if cmd.Amount == 0 {
				cmd.Amount = 1
			}
			c.value += cmd.Amount
			hc.Log().Debug("incremented", slog.Int("amount", cmd.Amount), slog.Int("value", c.value))
			return &Value{Value: c.value}, nil
		}),
		actor.HandleRequest[GetValue, Value](func(hc actor.HandlerCtx, _ GetValue) (*Value, error) {
			return &Value{Value: c.value}, nil
		}),
	}
}

// Add sends an Increment of amount to addr and returns the new value.
func Add(ctx context.Context, addr actor.Addr[*Counter], amount int) (int, error) {
	v, err := actor.Request[Increment, Value](ctx, addr, Increment{Amount: amount})
	if err != nil {
		return 0, err
	}
	return v.Value, nil
}

// Get returns the current value of the counter at addr.
func Get(ctx context.Context, addr actor.Addr[*Counter]) (int, error) {
	v, err := actor.Request[GetValue, Value](ctx, addr, GetValue{})
	if err != nil {
		return 0, err
	}
	return v.Value, nil
}
