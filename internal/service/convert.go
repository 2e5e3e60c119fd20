package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/hostledger/internal/calculator"
	"github.com/mmynk/hostledger/internal/models"
	"github.com/mmynk/hostledger/pkg/api"
)

// connectError maps ledger sentinels to Connect codes. Anything unknown is
// reported as internal.
func connectError(err error) *connect.Error {
	var code connect.Code
	switch {
	case errors.Is(err, models.ErrInvalidFeeConfiguration),
		errors.Is(err, models.ErrInvalidRequest),
		errors.Is(err, models.ErrOverRefund):
		code = connect.CodeInvalidArgument
	case errors.Is(err, models.ErrNotRefundable),
		errors.Is(err, models.ErrInsufficientAuthorization),
		errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrInvalidSettlementState):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, models.ErrEntityNotFound),
		errors.Is(err, models.ErrTransactionNotFound),
		errors.Is(err, models.ErrSettlementNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, models.ErrSettlementConflict):
		code = connect.CodeAborted
	case errors.Is(err, models.ErrCurrencyConversionUnavailable):
		code = connect.CodeUnavailable
	case errors.Is(err, models.ErrDuplicateOrder):
		code = connect.CodeAlreadyExists
	default:
		code = connect.CodeInternal
	}
	return connect.NewError(code, err)
}

func toAPIEntity(e *models.Entity) *api.Entity {
	return &api.Entity{
		ID:                  e.ID,
		Name:                e.Name,
		Role:                string(e.Role),
		Currency:            e.Currency,
		HostID:              e.HostID,
		HostFeePercent:      e.HostFeePercent,
		HostFeeSharePercent: e.HostFeeSharePercent,
		CreatedAt:           e.CreatedAt,
	}
}

func fromAPIEntity(e *api.Entity) *models.Entity {
	return &models.Entity{
		ID:                  e.ID,
		Name:                e.Name,
		Role:                models.Role(e.Role),
		Currency:            e.Currency,
		HostID:              e.HostID,
		HostFeePercent:      e.HostFeePercent,
		HostFeeSharePercent: e.HostFeeSharePercent,
	}
}

func toAPIEntry(e *models.Entry) *api.Entry {
	return &api.Entry{
		ID:                                e.ID,
		GroupID:                           e.GroupID,
		Kind:                              string(e.Kind),
		Direction:                         string(e.Direction),
		Amount:                            e.Amount,
		Currency:                          e.Currency,
		AmountInHostCurrency:              e.AmountInHostCurrency,
		HostCurrency:                      e.HostCurrency,
		PaymentProcessorFeeInHostCurrency: e.PaymentProcessorFeeInHostCurrency,
		NetAmountInAccountCurrency:        e.NetAmountInAccountCurrency,
		AccountCurrency:                   e.AccountCurrency,
		FromEntityID:                      e.FromEntityID,
		ToEntityID:                        e.ToEntityID,
		HostEntityID:                      e.HostEntityID,
		SettlementStatus:                  string(e.SettlementStatus),
		IsRefund:                          e.IsRefund,
		RefundOfGroupID:                   e.RefundOfGroupID,
		CounterpartEntryID:                e.CounterpartEntryID,
		OrderID:                           e.OrderID,
		Description:                       e.Description,
		CreatedAt:                         e.CreatedAt,
	}
}

func toAPIEntries(entries []*models.Entry) []*api.Entry {
	out := make([]*api.Entry, len(entries))
	for i, e := range entries {
		out[i] = toAPIEntry(e)
	}
	return out
}

func toAPISettlement(r *models.SettlementRequest) *api.SettlementRequest {
	return &api.SettlementRequest{
		ID:         r.ID,
		HostID:     r.HostID,
		PlatformID: r.PlatformID,
		Amount:     r.Amount,
		Currency:   r.Currency,
		Status:     string(r.Status),
		EntryIDs:   r.EntryIDs,
		CutoffDate: r.CutoffDate,
		GroupID:    r.GroupID,
		CreatedAt:  r.CreatedAt,
		ApprovedAt: r.ApprovedAt,
		PaidAt:     r.PaidAt,
	}
}

func toAPISettlements(reqs []*models.SettlementRequest) []*api.SettlementRequest {
	out := make([]*api.SettlementRequest, len(reqs))
	for i, r := range reqs {
		out[i] = toAPISettlement(r)
	}
	return out
}

func toAPIFees(f calculator.Fees) api.Fees {
	return api.Fees{
		PlatformTip:             f.PlatformTip,
		NetAmount:               f.NetAmount,
		NetAmountInHostCurrency: f.NetAmountInHostCurrency,
		HostFee:                 f.HostFee,
		HostFeeShare:            f.HostFeeShare,
		HostProfit:              f.HostProfit,
	}
}
