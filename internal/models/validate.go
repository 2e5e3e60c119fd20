package models

import "fmt"

// ValidatePair checks that both sides of a pair mirror each other.
func ValidatePair(p Pair) error {
	c, d := p.Credit, p.Debit
	if c == nil || d == nil {
		return fmt.Errorf("%w: pair is missing a side", ErrUnbalancedGroup)
	}
	if c.Direction != Credit || d.Direction != Debit {
		return fmt.Errorf("%w: pair directions are %s/%s", ErrUnbalancedGroup, c.Direction, d.Direction)
	}
	if c.Amount < 0 || c.Amount != d.Amount || c.Currency != d.Currency {
		return fmt.Errorf("%w: %s pair amounts differ (%d %s vs %d %s)",
			ErrUnbalancedGroup, c.Kind, c.Amount, c.Currency, d.Amount, d.Currency)
	}
	if c.Kind != d.Kind || c.GroupID != d.GroupID {
		return fmt.Errorf("%w: pair sides disagree on kind or group", ErrUnbalancedGroup)
	}
	if c.FromEntityID != d.FromEntityID || c.ToEntityID != d.ToEntityID {
		return fmt.Errorf("%w: %s pair sides disagree on parties", ErrUnbalancedGroup, c.Kind)
	}
	return nil
}

// ValidateGroup checks the double-entry invariant for a group about to be
// written: every pair mirrors itself and the signed native amounts sum to
// zero per currency.
func ValidateGroup(g *Group) error {
	if len(g.Pairs) == 0 {
		return fmt.Errorf("%w: empty group", ErrUnbalancedGroup)
	}
	for _, p := range g.Pairs {
		if err := ValidatePair(p); err != nil {
			return err
		}
		if p.Credit.GroupID != g.ID {
			return fmt.Errorf("%w: entry belongs to group %s, expected %s", ErrUnbalancedGroup, p.Credit.GroupID, g.ID)
		}
	}
	return ValidateEntries(g.Entries())
}

// ValidateEntries checks that signed native amounts sum to zero per group and
// currency over a set of stored entries, and that stored counterparts point
// at each other.
func ValidateEntries(entries []*Entry) error {
	type key struct{ group, currency string }
	sums := make(map[key]int64)
	byID := make(map[int64]*Entry, len(entries))
	for _, e := range entries {
		sums[key{e.GroupID, e.Currency}] += e.SignedAmount()
		if e.ID != 0 {
			byID[e.ID] = e
		}
	}
	for k, sum := range sums {
		if sum != 0 {
			return fmt.Errorf("%w: group %s is off by %d %s", ErrUnbalancedGroup, k.group, sum, k.currency)
		}
	}
	for _, e := range byID {
		if e.CounterpartEntryID == 0 {
			continue
		}
		other, ok := byID[e.CounterpartEntryID]
		if !ok {
			continue
		}
		if other.CounterpartEntryID != e.ID || other.Direction != e.Direction.Opposite() || other.Amount != e.Amount {
			return fmt.Errorf("%w: entries %d and %d are not counterparts", ErrUnbalancedGroup, e.ID, other.ID)
		}
	}
	return nil
}
