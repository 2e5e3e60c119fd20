package models

// Payment services known to the ledger.
const (
	ServiceOpenCollective = "opencollective"
	ServiceStripe         = "stripe"
	ServicePaypal         = "paypal"
)

// Payment method types.
const (
	TypeManual       = "manual"
	TypeCollective   = "collective"
	TypeCreditCard   = "creditcard"
	TypeBankTransfer = "banktransfer"
)

// PaymentMethod describes how an order was paid, as confirmed by the
// external payment layer.
type PaymentMethod struct {
	Service string
	Type    string

	// Paid is the payment layer's confirmation that funds were captured.
	Paid bool
}

// RoutesTipThroughHost reports whether a platform tip paid with this method
// lands in the host's pooled balance (and is therefore owed onward) rather
// than being collected by the platform directly.
func (pm PaymentMethod) RoutesTipThroughHost() bool {
	switch pm.Service {
	case ServiceStripe, ServicePaypal:
		return false
	}
	return true
}

// Order is an already-authorized contribution handed over by the payment layer.
type Order struct {
	// ID is the external order identifier. Generated when empty.
	ID string

	// FromEntityID is the payer: a contributor, or a collective paying from
	// its own balance.
	FromEntityID string

	// CollectiveID is the receiving collective.
	CollectiveID string

	// TotalAmount is what the payer was charged, in Currency minor units.
	TotalAmount int64
	Currency    string

	// IsFeesOnTop marks PlatformTip as added on top of the contribution.
	IsFeesOnTop bool
	PlatformTip int64

	// PaymentProcessorFeeInHostCurrency is the processor's cut.
	PaymentProcessorFeeInHostCurrency int64

	// HostFeePercent overrides the collective's default when set.
	HostFeePercent *float64

	PaymentMethod PaymentMethod
	Description   string

	// CreatedAt is the Unix timestamp used for rate lookups. Defaults to now.
	CreatedAt int64
}

// Expense is a payment out of a collective's balance.
type Expense struct {
	CollectiveID string
	PayeeID      string
	Amount       int64
	Description  string
	CreatedAt    int64
}

// RefundKind records why a contribution was reversed.
type RefundKind string

const (
	RefundKindRefund    RefundKind = "REFUND"
	RefundKindRejected  RefundKind = "REJECT"
	RefundKindDispute   RefundKind = "DISPUTE"
	RefundKindEdit      RefundKind = "EDIT"
	RefundKindDuplicate RefundKind = "DUPLICATE"
)

// Valid reports whether k is a known refund kind.
func (k RefundKind) Valid() bool {
	switch k {
	case RefundKindRefund, RefundKindRejected, RefundKindDispute, RefundKindEdit, RefundKindDuplicate:
		return true
	}
	return false
}
