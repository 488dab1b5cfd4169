package engine

import (
	"github.com/MichaelBrownui/PrivacyPoker/internal/confidential"
	"github.com/MichaelBrownui/PrivacyPoker/internal/state"
)

// Ledger operations: the only code that swaps balance or pot handles. Every
// amount flows through the confidential service; plaintexts never appear
// here. Handles are swapped only after the confidential call succeeded, so a
// service failure leaves balances and pot untouched.

func (e *Engine) creditStake(p *state.Player, stake uint64) error {
	h, err := e.svc.Encrypt(stake, p.Identity)
	if err != nil {
		return err
	}
	p.BalanceHandle = string(h)
	return nil
}

// debit subtracts amount from the player's balance. The underflow check is a
// confidential comparison: only the boolean is revealed.
func (e *Engine) debit(p *state.Player, amount confidential.Handle) error {
	bal := confidential.Handle(p.BalanceHandle)
	short, err := e.svc.CompareLessThan(bal, amount)
	if err != nil {
		return err
	}
	if short {
		return ErrInsufficientBalance
	}
	next, err := e.svc.Subtract(bal, amount)
	if err != nil {
		return err
	}
	p.BalanceHandle = string(next)
	return nil
}

func (e *Engine) contributeToPot(g *state.Game, amount confidential.Handle) error {
	next, err := e.svc.Add(confidential.Handle(g.PotHandle), amount)
	if err != nil {
		return err
	}
	g.PotHandle = string(next)
	return nil
}

// disbursePot moves the whole pot into the winner's balance and resets the
// pot to an encrypted zero. The single authorized shrink of the pot.
func (e *Engine) disbursePot(g *state.Game, winner *state.Player) error {
	next, err := e.svc.Add(confidential.Handle(winner.BalanceHandle), confidential.Handle(g.PotHandle))
	if err != nil {
		return err
	}
	empty, err := e.svc.Encrypt(0, g.Owner)
	if err != nil {
		return err
	}
	winner.BalanceHandle = string(next)
	g.PotHandle = string(empty)
	return nil
}
