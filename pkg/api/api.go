// Package api defines the JSON messages of the hostledger.v1.LedgerService
// Connect API. Amounts are minor units, timestamps are Unix seconds.
package api

// Entity is a ledger party.
type Entity struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Role                string  `json:"role"`
	Currency            string  `json:"currency"`
	HostID              string  `json:"host_id,omitempty"`
	HostFeePercent      float64 `json:"host_fee_percent,omitempty"`
	HostFeeSharePercent float64 `json:"host_fee_share_percent,omitempty"`
	CreatedAt           int64   `json:"created_at"`
}

// Entry is one side of a CREDIT/DEBIT pair.
type Entry struct {
	ID                                int64  `json:"id"`
	GroupID                           string `json:"group_id"`
	Kind                              string `json:"kind"`
	Direction                         string `json:"direction"`
	Amount                            int64  `json:"amount"`
	Currency                          string `json:"currency"`
	AmountInHostCurrency              int64  `json:"amount_in_host_currency"`
	HostCurrency                      string `json:"host_currency"`
	PaymentProcessorFeeInHostCurrency int64  `json:"payment_processor_fee_in_host_currency,omitempty"`
	NetAmountInAccountCurrency        int64  `json:"net_amount_in_account_currency"`
	AccountCurrency                   string `json:"account_currency"`
	FromEntityID                      string `json:"from_entity_id"`
	ToEntityID                        string `json:"to_entity_id"`
	HostEntityID                      string `json:"host_entity_id,omitempty"`
	SettlementStatus                  string `json:"settlement_status,omitempty"`
	IsRefund                          bool   `json:"is_refund,omitempty"`
	RefundOfGroupID                   string `json:"refund_of_group_id,omitempty"`
	CounterpartEntryID                int64  `json:"counterpart_entry_id"`
	OrderID                           string `json:"order_id,omitempty"`
	Description                       string `json:"description,omitempty"`
	CreatedAt                         int64  `json:"created_at"`
}

// SettlementRequest is what a host owes the platform for one run.
type SettlementRequest struct {
	ID         string  `json:"id"`
	HostID     string  `json:"host_id"`
	PlatformID string  `json:"platform_id"`
	Amount     int64   `json:"amount"`
	Currency   string  `json:"currency"`
	Status     string  `json:"status"`
	EntryIDs   []int64 `json:"entry_ids"`
	CutoffDate int64   `json:"cutoff_date"`
	GroupID    string  `json:"group_id,omitempty"`
	CreatedAt  int64   `json:"created_at"`
	ApprovedAt int64   `json:"approved_at,omitempty"`
	PaidAt     int64   `json:"paid_at,omitempty"`
}

// Fees is the breakdown of a recorded contribution.
type Fees struct {
	PlatformTip             int64 `json:"platform_tip"`
	NetAmount               int64 `json:"net_amount"`
	NetAmountInHostCurrency int64 `json:"net_amount_in_host_currency"`
	HostFee                 int64 `json:"host_fee"`
	HostFeeShare            int64 `json:"host_fee_share"`
	HostProfit              int64 `json:"host_profit"`
}

type CreateEntityRequest struct {
	Entity *Entity `json:"entity"`
}

type CreateEntityResponse struct {
	Entity *Entity `json:"entity"`
}

type GetEntityRequest struct {
	ID string `json:"id"`
}

type GetEntityResponse struct {
	Entity *Entity `json:"entity"`
}

type ListEntitiesRequest struct {
	// Role filters by role when set.
	Role string `json:"role,omitempty"`
}

type ListEntitiesResponse struct {
	Entities []*Entity `json:"entities"`
}

// PaymentMethod is the payment layer's confirmation of an order.
type PaymentMethod struct {
	Service string `json:"service"`
	Type    string `json:"type"`
	Paid    bool   `json:"paid"`
}

type ExecuteOrderRequest struct {
	OrderID                           string        `json:"order_id,omitempty"`
	FromEntityID                      string        `json:"from_entity_id"`
	CollectiveID                      string        `json:"collective_id"`
	TotalAmount                       int64         `json:"total_amount"`
	Currency                          string        `json:"currency"`
	IsFeesOnTop                       bool          `json:"is_fees_on_top,omitempty"`
	PlatformTip                       int64         `json:"platform_tip,omitempty"`
	PaymentProcessorFeeInHostCurrency int64         `json:"payment_processor_fee_in_host_currency,omitempty"`
	HostFeePercent                    *float64      `json:"host_fee_percent,omitempty"`
	PaymentMethod                     PaymentMethod `json:"payment_method"`
	Description                       string        `json:"description,omitempty"`
	CreatedAt                         int64         `json:"created_at,omitempty"`
}

type ExecuteOrderResponse struct {
	OrderID string   `json:"order_id"`
	GroupID string   `json:"group_id"`
	Fees    Fees     `json:"fees"`
	Entries []*Entry `json:"entries"`
}

type RefundTransactionRequest struct {
	EntryID              int64             `json:"entry_id"`
	Amount               int64             `json:"amount,omitempty"`
	RefundedProcessorFee int64             `json:"refunded_processor_fee,omitempty"`
	Kind                 string            `json:"kind,omitempty"`
	Metadata             map[string]string `json:"metadata,omitempty"`
}

type RefundTransactionResponse struct {
	GroupID string   `json:"group_id"`
	Amount  int64    `json:"amount"`
	Final   bool     `json:"final"`
	Entries []*Entry `json:"entries"`
}

type ExecuteExpenseRequest struct {
	CollectiveID string `json:"collective_id"`
	PayeeID      string `json:"payee_id"`
	Amount       int64  `json:"amount"`
	Description  string `json:"description,omitempty"`
}

type ExecuteExpenseResponse struct {
	GroupID string   `json:"group_id"`
	Entries []*Entry `json:"entries"`
}

type ListEntriesRequest struct {
	EntityID        string   `json:"entity_id,omitempty"`
	HostEntityID    string   `json:"host_entity_id,omitempty"`
	GroupID         string   `json:"group_id,omitempty"`
	RefundOfGroupID string   `json:"refund_of_group_id,omitempty"`
	OrderID         string   `json:"order_id,omitempty"`
	Kinds           []string `json:"kinds,omitempty"`
	Statuses        []string `json:"statuses,omitempty"`
	AsOf            int64    `json:"as_of,omitempty"`
	Limit           int      `json:"limit,omitempty"`
}

type ListEntriesResponse struct {
	Entries []*Entry `json:"entries"`
}

type GetBalanceRequest struct {
	EntityID string `json:"entity_id"`
	AsOf     int64  `json:"as_of,omitempty"`
}

type GetBalanceResponse struct {
	EntityID                string `json:"entity_id"`
	Currency                string `json:"currency"`
	Balance                 int64  `json:"balance"`
	BalanceWithBlockedFunds int64  `json:"balance_with_blocked_funds"`
}

type GetHostMetricsRequest struct {
	HostID string `json:"host_id"`
	AsOf   int64  `json:"as_of,omitempty"`
}

type GetHostMetricsResponse struct {
	HostID              string  `json:"host_id"`
	Currency            string  `json:"currency"`
	HostFees            int64   `json:"host_fees"`
	PlatformFees        int64   `json:"platform_fees"`
	PendingPlatformFees int64   `json:"pending_platform_fees"`
	PlatformTips        int64   `json:"platform_tips"`
	PendingPlatformTips int64   `json:"pending_platform_tips"`
	HostFeeShare        int64   `json:"host_fee_share"`
	PendingHostFeeShare int64   `json:"pending_host_fee_share"`
	SettledHostFeeShare int64   `json:"settled_host_fee_share"`
	HostFeeSharePercent float64 `json:"host_fee_share_percent"`
	TotalMoneyManaged   int64   `json:"total_money_managed"`
}

type ValidateLedgerRequest struct{}

type ValidateLedgerResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

type RunSettlementRequest struct {
	// AsOf is the cutoff; zero means now.
	AsOf int64 `json:"as_of,omitempty"`

	// HostID restricts the run to one host.
	HostID string `json:"host_id,omitempty"`
}

type RunSettlementResponse struct {
	Requests []*SettlementRequest `json:"requests"`
	Skipped  []string             `json:"skipped,omitempty"`

	// Failed maps host IDs to error messages.
	Failed map[string]string `json:"failed,omitempty"`
}

type ApproveSettlementRequest struct {
	ID string `json:"id"`
}

type ApproveSettlementResponse struct {
	Request *SettlementRequest `json:"request"`
}

type PaySettlementRequest struct {
	ID string `json:"id"`
}

type PaySettlementResponse struct {
	Request *SettlementRequest `json:"request"`
}

type ListSettlementRequestsRequest struct {
	HostID string `json:"host_id,omitempty"`
}

type ListSettlementRequestsResponse struct {
	Requests []*SettlementRequest `json:"requests"`
}
