package contract

import (
	"fmt"
	"math/big"

	"auction-ledger/internal/auctionerrors"
	"auction-ledger/internal/models"
)

// Replay rebuilds state from previously committed events, in Seq order.
// It must run before the auction serves any operation. Sinks are not notified
// and nobody is paid: the payouts happened when the events were first emitted.
func (a *Auction) Replay(events []models.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, ev := range events {
		if ev.Seq <= a.seq {
			return fmt.Errorf("contract: replay event %d after %d: %w", ev.Seq, a.seq, auctionerrors.ErrJournalMismatch)
		}
		if err := a.apply(ev); err != nil {
			return fmt.Errorf("contract: replay %s #%d: %w", ev.Kind, ev.Seq, err)
		}
		a.seq = ev.Seq
	}
	a.events.resume(a.seq)
	return nil
}

func (a *Auction) apply(ev models.Event) error {
	amount := ev.Amount
	if amount == nil {
		amount = new(big.Int)
	}

	switch ev.Kind {
	case models.EventNewHighestBid:
		if len(ev.Entries) != 1 || ev.Entries[0] != uint64(a.ledger.Len()+1) {
			return fmt.Errorf("unexpected entries %v with %d recorded: %w", ev.Entries, a.ledger.Len(), auctionerrors.ErrJournalMismatch)
		}
		if err := a.state.requireOutbids(amount); err != nil {
			return err
		}
		id := a.ledger.Record(ev.Account, amount)
		a.state.advance(ev.Account, amount, id)

	case models.EventWithdrawBid:
		if err := a.state.requireUnlocked(ev.Account); err != nil {
			return fmt.Errorf("%s withdrew while holding the highest bid: %w", ev.Account.Hex(), auctionerrors.ErrJournalMismatch)
		}
		for _, id := range ev.Entries {
			e, err := a.ledger.Entry(id)
			if err != nil {
				return err
			}
			if e.Bidder != ev.Account {
				return fmt.Errorf("entry %d cannot be refunded to %s: %w", id, ev.Account.Hex(), auctionerrors.ErrJournalMismatch)
			}
		}
		total, _ := a.ledger.Zero(ev.Entries)
		if total.Cmp(amount) != 0 {
			return fmt.Errorf("refunded %s, journal says %s: %w", total, amount, auctionerrors.ErrJournalMismatch)
		}

	case models.EventAuctionFinished:
		if err := a.state.requireNotEnded(); err != nil {
			return err
		}
		if len(ev.Entries) > 1 || len(ev.Entries) == 1 && ev.Entries[0] != a.state.highestEntry {
			return fmt.Errorf("finished on entries %v, highest is %d: %w", ev.Entries, a.state.highestEntry, auctionerrors.ErrJournalMismatch)
		}
		a.state.ended = true
		a.ledger.Zero(ev.Entries)

	default:
		return fmt.Errorf("unknown event kind %d: %w", ev.Kind, auctionerrors.ErrJournalMismatch)
	}
	return nil
}
