package models

// SettlementRequestStatus is the lifecycle state of a SettlementRequest.
type SettlementRequestStatus string

const (
	SettlementPending  SettlementRequestStatus = "PENDING"
	SettlementApproved SettlementRequestStatus = "APPROVED"
	SettlementPaid     SettlementRequestStatus = "PAID"
)

// SettlementRequest is the payable record a host owes the platform for one
// settlement run. It is consumed by the expense-approval workflow.
type SettlementRequest struct {
	// ID is the unique identifier for the request (UUID format).
	ID string

	// HostID is the host that owes the amount.
	HostID string

	// PlatformID is the party being paid.
	PlatformID string

	// Amount is the net owed amount in Currency, the host's settlement currency.
	Amount   int64
	Currency string

	Status SettlementRequestStatus

	// EntryIDs are the host-side debt entries gathered into this request.
	EntryIDs []int64

	// CutoffDate is the Unix timestamp entries had to be created before.
	CutoffDate int64

	// GroupID is the group of the SETTLEMENT pair emitted on payment.
	GroupID string

	// CreatedAt, ApprovedAt and PaidAt are Unix timestamps; zero until reached.
	CreatedAt  int64
	ApprovedAt int64
	PaidAt     int64
}
