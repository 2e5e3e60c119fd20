package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPair(group string, amount int64) Pair {
	return Pair{
		Credit: &Entry{GroupID: group, Kind: KindContribution, Direction: Credit, Amount: amount, Currency: "USD", FromEntityID: "a", ToEntityID: "b"},
		Debit:  &Entry{GroupID: group, Kind: KindContribution, Direction: Debit, Amount: amount, Currency: "USD", FromEntityID: "a", ToEntityID: "b"},
	}
}

func TestValidateGroup(t *testing.T) {
	t.Run("balanced group", func(t *testing.T) {
		g := &Group{ID: "g", Pairs: []Pair{testPair("g", 100), testPair("g", 5)}}
		require.NoError(t, ValidateGroup(g))
		assert.Len(t, g.Entries(), 4)
	})

	t.Run("empty group", func(t *testing.T) {
		require.ErrorIs(t, ValidateGroup(&Group{ID: "g"}), ErrUnbalancedGroup)
	})

	t.Run("amount mismatch", func(t *testing.T) {
		p := testPair("g", 100)
		p.Debit.Amount = 99
		require.ErrorIs(t, ValidateGroup(&Group{ID: "g", Pairs: []Pair{p}}), ErrUnbalancedGroup)
	})

	t.Run("swapped directions", func(t *testing.T) {
		p := testPair("g", 100)
		p.Credit, p.Debit = p.Debit, p.Credit
		require.ErrorIs(t, ValidateGroup(&Group{ID: "g", Pairs: []Pair{p}}), ErrUnbalancedGroup)
	})

	t.Run("foreign group id", func(t *testing.T) {
		require.ErrorIs(t, ValidateGroup(&Group{ID: "g", Pairs: []Pair{testPair("other", 1)}}), ErrUnbalancedGroup)
	})
}

func TestValidateEntries_Counterparts(t *testing.T) {
	p := testPair("g", 100)
	p.Credit.ID, p.Debit.ID = 1, 2
	p.Credit.CounterpartEntryID, p.Debit.CounterpartEntryID = 2, 1
	require.NoError(t, ValidateEntries(p.Entries()))

	p.Debit.CounterpartEntryID = 3
	require.ErrorIs(t, ValidateEntries(p.Entries()), ErrUnbalancedGroup)
}

func TestEntryOwnership(t *testing.T) {
	p := testPair("g", 100)
	assert.Equal(t, "b", p.Credit.Owner())
	assert.Equal(t, "a", p.Debit.Owner())
	assert.Equal(t, "a", p.Credit.Counterparty())
	assert.Equal(t, int64(100), p.Credit.SignedAmount())
	assert.Equal(t, int64(-100), p.Debit.SignedAmount())
}

func TestPaymentMethod_RoutesTipThroughHost(t *testing.T) {
	tests := []struct {
		pm   PaymentMethod
		want bool
	}{
		{PaymentMethod{Service: ServiceOpenCollective, Type: TypeManual}, true},
		{PaymentMethod{Service: ServiceOpenCollective, Type: TypeCollective}, true},
		{PaymentMethod{Service: ServiceStripe, Type: TypeCreditCard}, false},
		{PaymentMethod{Service: ServicePaypal}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.pm.RoutesTipThroughHost(), "%+v", tt.pm)
	}
}
