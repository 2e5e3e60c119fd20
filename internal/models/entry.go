package models

// Kind classifies what an entry pays for.
type Kind string

const (
	KindContribution        Kind = "CONTRIBUTION"
	KindHostFee             Kind = "HOST_FEE"
	KindHostFeeShare        Kind = "HOST_FEE_SHARE"
	KindHostFeeShareDebt    Kind = "HOST_FEE_SHARE_DEBT"
	KindPlatformTip         Kind = "PLATFORM_TIP"
	KindPlatformTipDebt     Kind = "PLATFORM_TIP_DEBT"
	KindPaymentProcessorFee Kind = "PAYMENT_PROCESSOR_FEE"
	KindExpense             Kind = "EXPENSE"
	KindSettlement          Kind = "SETTLEMENT"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindContribution, KindHostFee, KindHostFeeShare, KindHostFeeShareDebt,
		KindPlatformTip, KindPlatformTipDebt, KindPaymentProcessorFee, KindExpense, KindSettlement:
		return true
	}
	return false
}

// IsDebt reports whether entries of this kind record money a host owes the
// platform and therefore go through settlement.
func (k Kind) IsDebt() bool {
	return k == KindHostFeeShareDebt || k == KindPlatformTipDebt
}

// Direction is the side of a pair an entry sits on.
type Direction string

const (
	Credit Direction = "CREDIT"
	Debit  Direction = "DEBIT"
)

// Opposite returns the other side of a pair.
func (d Direction) Opposite() Direction {
	if d == Credit {
		return Debit
	}
	return Credit
}

// Sign returns +1 for credits and -1 for debits.
func (d Direction) Sign() int64 {
	if d == Credit {
		return 1
	}
	return -1
}

// SettlementStatus tracks money a host owes the platform.
type SettlementStatus string

const (
	StatusNone     SettlementStatus = ""
	StatusOwed     SettlementStatus = "OWED"
	StatusInvoiced SettlementStatus = "INVOICED"
	StatusSettled  SettlementStatus = "SETTLED"
)

// IsPending reports whether the amount has not reached the platform yet.
func (s SettlementStatus) IsPending() bool {
	return s == StatusOwed || s == StatusInvoiced
}

// Entry is one side of a CREDIT/DEBIT pair.
// Every fund movement creates exactly two entries linked through
// CounterpartEntryID and sharing a GroupID.
type Entry struct {
	// ID is assigned by the store on insert and increases monotonically.
	ID int64

	// GroupID correlates every entry produced by one originating event (UUID format).
	GroupID string

	Kind      Kind
	Direction Direction

	// Amount is the native magnitude, always positive. Currency is its ISO code.
	Amount   int64
	Currency string

	// AmountInHostCurrency is Amount converted into HostCurrency, the
	// settlement currency of the host whose books hold this entry.
	AmountInHostCurrency int64
	HostCurrency         string

	// PaymentProcessorFeeInHostCurrency is the processor's cut, carried by the
	// credit side of a contribution. Always positive.
	PaymentProcessorFeeInHostCurrency int64

	// NetAmountInAccountCurrency is how much the owner's balance moves, in the
	// owner's own currency. Always positive.
	NetAmountInAccountCurrency int64
	AccountCurrency            string

	// FromEntityID and ToEntityID describe where the money moves.
	// The credit sits on the receiver's books, the debit on the sender's.
	FromEntityID string
	ToEntityID   string

	// HostEntityID is the host of the owner's books at creation time.
	// Empty for unhosted contributors.
	HostEntityID string

	// SettlementStatus is only set on debt kinds.
	SettlementStatus SettlementStatus

	// IsRefund marks entries that reverse an earlier group, RefundOfGroupID
	// names that group.
	IsRefund        bool
	RefundOfGroupID string

	// CounterpartEntryID is the ID of the opposite side of the pair.
	CounterpartEntryID int64

	// OrderID links contribution groups back to the order that produced them.
	OrderID     string
	Description string

	// CreatedAt is the Unix timestamp when the entry was written.
	CreatedAt int64
}

// Owner returns the entity whose books hold the entry.
func (e *Entry) Owner() string {
	if e.Direction == Credit {
		return e.ToEntityID
	}
	return e.FromEntityID
}

// Counterparty returns the entity on the other side of the pair.
func (e *Entry) Counterparty() string {
	if e.Direction == Credit {
		return e.FromEntityID
	}
	return e.ToEntityID
}

// SignedAmount is Amount with the direction's sign applied.
func (e *Entry) SignedAmount() int64 {
	return e.Direction.Sign() * e.Amount
}

// SignedNetAmount is NetAmountInAccountCurrency with the direction's sign applied.
func (e *Entry) SignedNetAmount() int64 {
	return e.Direction.Sign() * e.NetAmountInAccountCurrency
}

// SignedNetAmountInHostCurrency is the host-currency amount net of processor
// fees, with the direction's sign applied.
func (e *Entry) SignedNetAmountInHostCurrency() int64 {
	return e.Direction.Sign() * (e.AmountInHostCurrency - e.PaymentProcessorFeeInHostCurrency)
}

// Pair is a credit and its matching debit, inserted together.
type Pair struct {
	Credit *Entry
	Debit  *Entry
}

// Entries returns both sides, credit first.
func (p Pair) Entries() []*Entry {
	return []*Entry{p.Credit, p.Debit}
}

// Group is the atomic set of pairs produced by one event.
type Group struct {
	ID    string
	Pairs []Pair
}

// Entries flattens the group's pairs.
func (g *Group) Entries() []*Entry {
	entries := make([]*Entry, 0, 2*len(g.Pairs))
	for _, p := range g.Pairs {
		entries = append(entries, p.Entries()...)
	}
	return entries
}
