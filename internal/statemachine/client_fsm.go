package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/creditos-api/internal/models"
)

// ClientFSM wraps a client with its lifecycle state machine
type ClientFSM struct {
	client *models.Client
	fsm    *fsm.FSM
}

// NewClientFSM creates a new client state machine
func NewClientFSM(client *models.Client) *ClientFSM {
	cfsm := &ClientFSM{
		client: client,
	}

	cfsm.fsm = fsm.NewFSM(
		client.State(),
		fsm.Events{
			// active → cancelled (paid off or removed)
			{Name: "cancel", Src: []string{models.ClientStateActive}, Dst: models.ClientStateCancelled},

			// cancelled → active
			{Name: "reactivate", Src: []string{models.ClientStateCancelled}, Dst: models.ClientStateActive},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				cfsm.client.Cancelled = e.Dst == models.ClientStateCancelled
			},
		},
	)

	return cfsm
}

// Cancel closes the client and zeroes its balance
func (c *ClientFSM) Cancel(ctx context.Context) error {
	if !c.client.MayCancel() {
		return fmt.Errorf("client cannot be cancelled in current state: %s", c.client.State())
	}

	if err := c.fsm.Event(ctx, "cancel"); err != nil {
		return fmt.Errorf("failed to cancel client: %w", err)
	}

	c.client.Balance = decimal.Zero
	return nil
}

// Reactivate reopens a cancelled client with a zero balance; lending resumes with a new loan
func (c *ClientFSM) Reactivate(ctx context.Context) error {
	if !c.client.MayReactivate() {
		return fmt.Errorf("client cannot be reactivated in current state: %s", c.client.State())
	}

	if err := c.fsm.Event(ctx, "reactivate"); err != nil {
		return fmt.Errorf("failed to reactivate client: %w", err)
	}

	c.client.Balance = decimal.Zero
	return nil
}

// Reopen reactivates a cancelled client keeping the balance it owes again,
// as when a payment is reversed
func (c *ClientFSM) Reopen(ctx context.Context) error {
	if !c.client.MayReactivate() {
		return fmt.Errorf("client cannot be reopened in current state: %s", c.client.State())
	}

	if err := c.fsm.Event(ctx, "reactivate"); err != nil {
		return fmt.Errorf("failed to reopen client: %w", err)
	}
	return nil
}

// Current returns the current state
func (c *ClientFSM) Current() string {
	return c.fsm.Current()
}

// Can checks if an event can be triggered
func (c *ClientFSM) Can(event string) bool {
	return c.fsm.Can(event)
}
