package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/hostledger/internal/auth"
	"github.com/mmynk/hostledger/internal/ledger"
	"github.com/mmynk/hostledger/internal/middleware"
	"github.com/mmynk/hostledger/internal/models"
	"github.com/mmynk/hostledger/internal/settlement"
	"github.com/mmynk/hostledger/internal/storage"
	"github.com/mmynk/hostledger/pkg/api"
	"github.com/mmynk/hostledger/pkg/api/apiconnect"
)

// Policy lists the procedures that need a bearer token and the role it must carry.
func Policy() middleware.Policy {
	return middleware.Policy{
		apiconnect.LedgerServiceRunSettlementProcedure:     auth.RoleScheduler,
		apiconnect.LedgerServiceApproveSettlementProcedure: auth.RoleApprover,
		apiconnect.LedgerServicePaySettlementProcedure:     auth.RoleApprover,
	}
}

// LedgerService implements the Connect LedgerService.
type LedgerService struct {
	apiconnect.UnimplementedLedgerServiceHandler
	store      storage.Store
	ledger     *ledger.Engine
	settlement *settlement.Engine
	queries    *ledger.Queries
	now        func() time.Time
}

// NewLedgerService creates a LedgerService over the given engines.
func NewLedgerService(store storage.Store, ledgerEngine *ledger.Engine, settlementEngine *settlement.Engine) *LedgerService {
	return &LedgerService{
		store:      store,
		ledger:     ledgerEngine,
		settlement: settlementEngine,
		queries:    ledger.NewQueries(store),
		now:        time.Now,
	}
}

// CreateEntity registers a contributor, collective, host or platform.
func (s *LedgerService) CreateEntity(ctx context.Context, req *connect.Request[api.CreateEntityRequest]) (*connect.Response[api.CreateEntityResponse], error) {
	if req.Msg.Entity == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("entity required"))
	}
	entity := fromAPIEntity(req.Msg.Entity)
	if err := s.ledger.RegisterEntity(ctx, entity); err != nil {
		return nil, connectError(err)
	}

	slog.Info("Entity created", "entity_id", entity.ID, "role", entity.Role)
	return connect.NewResponse(&api.CreateEntityResponse{Entity: toAPIEntity(entity)}), nil
}

// GetEntity retrieves an entity by ID.
func (s *LedgerService) GetEntity(ctx context.Context, req *connect.Request[api.GetEntityRequest]) (*connect.Response[api.GetEntityResponse], error) {
	entity, err := s.store.GetEntity(ctx, req.Msg.ID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.GetEntityResponse{Entity: toAPIEntity(entity)}), nil
}

// ListEntities returns entities, optionally restricted to one role.
func (s *LedgerService) ListEntities(ctx context.Context, req *connect.Request[api.ListEntitiesRequest]) (*connect.Response[api.ListEntitiesResponse], error) {
	role := models.Role(req.Msg.Role)
	if role != "" && !role.Valid() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown role %q", req.Msg.Role))
	}
	entities, err := s.store.ListEntities(ctx, role)
	if err != nil {
		return nil, connectError(err)
	}

	out := make([]*api.Entity, len(entities))
	for i, e := range entities {
		out[i] = toAPIEntity(e)
	}
	return connect.NewResponse(&api.ListEntitiesResponse{Entities: out}), nil
}

// ExecuteOrder records a paid contribution.
func (s *LedgerService) ExecuteOrder(ctx context.Context, req *connect.Request[api.ExecuteOrderRequest]) (*connect.Response[api.ExecuteOrderResponse], error) {
	msg := req.Msg
	order := &models.Order{
		ID:                                msg.OrderID,
		FromEntityID:                      msg.FromEntityID,
		CollectiveID:                      msg.CollectiveID,
		TotalAmount:                       msg.TotalAmount,
		Currency:                          msg.Currency,
		IsFeesOnTop:                       msg.IsFeesOnTop,
		PlatformTip:                       msg.PlatformTip,
		PaymentProcessorFeeInHostCurrency: msg.PaymentProcessorFeeInHostCurrency,
		HostFeePercent:                    msg.HostFeePercent,
		PaymentMethod: models.PaymentMethod{
			Service: msg.PaymentMethod.Service,
			Type:    msg.PaymentMethod.Type,
			Paid:    msg.PaymentMethod.Paid,
		},
		Description: msg.Description,
		CreatedAt:   msg.CreatedAt,
	}

	result, err := s.ledger.ExecuteOrder(ctx, order)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.ExecuteOrderResponse{
		OrderID: order.ID,
		GroupID: result.Group.ID,
		Fees:    toAPIFees(result.Fees),
		Entries: toAPIEntries(result.Group.Entries()),
	}), nil
}

// RefundTransaction reverses all or part of a contribution.
func (s *LedgerService) RefundTransaction(ctx context.Context, req *connect.Request[api.RefundTransactionRequest]) (*connect.Response[api.RefundTransactionResponse], error) {
	msg := req.Msg
	kind := models.RefundKind(msg.Kind)
	if kind != "" && !kind.Valid() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown refund kind %q", msg.Kind))
	}

	result, err := s.ledger.CreateRefundTransaction(ctx, ledger.RefundRequest{
		EntryID:              msg.EntryID,
		Amount:               msg.Amount,
		RefundedProcessorFee: msg.RefundedProcessorFee,
		Kind:                 kind,
		Metadata:             msg.Metadata,
	})
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.RefundTransactionResponse{
		GroupID: result.Group.ID,
		Amount:  result.Amount,
		Final:   result.Final,
		Entries: toAPIEntries(result.Group.Entries()),
	}), nil
}

// ExecuteExpense pays out of a collective's balance.
func (s *LedgerService) ExecuteExpense(ctx context.Context, req *connect.Request[api.ExecuteExpenseRequest]) (*connect.Response[api.ExecuteExpenseResponse], error) {
	group, err := s.ledger.ExecuteExpense(ctx, &models.Expense{
		CollectiveID: req.Msg.CollectiveID,
		PayeeID:      req.Msg.PayeeID,
		Amount:       req.Msg.Amount,
		Description:  req.Msg.Description,
	})
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.ExecuteExpenseResponse{
		GroupID: group.ID,
		Entries: toAPIEntries(group.Entries()),
	}), nil
}

// ListEntries returns entries matching the request's filter.
func (s *LedgerService) ListEntries(ctx context.Context, req *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error) {
	msg := req.Msg
	filter := storage.EntryFilter{
		EntityID:        msg.EntityID,
		HostEntityID:    msg.HostEntityID,
		GroupID:         msg.GroupID,
		RefundOfGroupID: msg.RefundOfGroupID,
		OrderID:         msg.OrderID,
		AsOf:            msg.AsOf,
		Limit:           msg.Limit,
	}
	for _, k := range msg.Kinds {
		kind := models.Kind(k)
		if !kind.Valid() {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown kind %q", k))
		}
		filter.Kinds = append(filter.Kinds, kind)
	}
	for _, st := range msg.Statuses {
		filter.Statuses = append(filter.Statuses, models.SettlementStatus(st))
	}

	entries, err := s.store.ListEntries(ctx, filter)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.ListEntriesResponse{Entries: toAPIEntries(entries)}), nil
}

// GetBalance returns an entity's balance in its own currency.
func (s *LedgerService) GetBalance(ctx context.Context, req *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	balance, err := s.queries.GetBalance(ctx, req.Msg.EntityID, req.Msg.AsOf)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.GetBalanceResponse{
		EntityID:                balance.EntityID,
		Currency:                balance.Currency,
		Balance:                 balance.Balance,
		BalanceWithBlockedFunds: balance.BalanceWithBlockedFunds,
	}), nil
}

// GetHostMetrics returns a host's fee and settlement position.
func (s *LedgerService) GetHostMetrics(ctx context.Context, req *connect.Request[api.GetHostMetricsRequest]) (*connect.Response[api.GetHostMetricsResponse], error) {
	host, err := s.store.GetEntity(ctx, req.Msg.HostID)
	if err != nil {
		return nil, connectError(err)
	}
	m, err := s.queries.HostMetrics(ctx, req.Msg.HostID, req.Msg.AsOf)
	if err != nil {
		return nil, connectError(err)
	}

	return connect.NewResponse(&api.GetHostMetricsResponse{
		HostID:              host.ID,
		Currency:            host.Currency,
		HostFees:            m.HostFees,
		PlatformFees:        m.PlatformFees,
		PendingPlatformFees: m.PendingPlatformFees,
		PlatformTips:        m.PlatformTips,
		PendingPlatformTips: m.PendingPlatformTips,
		HostFeeShare:        m.HostFeeShare,
		PendingHostFeeShare: m.PendingHostFeeShare,
		SettledHostFeeShare: m.SettledHostFeeShare,
		HostFeeSharePercent: m.HostFeeSharePercent,
		TotalMoneyManaged:   m.TotalMoneyManaged,
	}), nil
}

// ValidateLedger checks that every group balances. An unbalanced ledger is
// reported in the response, not as an RPC error.
func (s *LedgerService) ValidateLedger(ctx context.Context, req *connect.Request[api.ValidateLedgerRequest]) (*connect.Response[api.ValidateLedgerResponse], error) {
	if err := s.queries.ValidateLedger(ctx); err != nil {
		slog.Warn("Ledger validation failed", "error", err)
		return connect.NewResponse(&api.ValidateLedgerResponse{Valid: false, Error: err.Error()}), nil
	}
	return connect.NewResponse(&api.ValidateLedgerResponse{Valid: true}), nil
}

// RunSettlement invoices OWED debt created before the cutoff.
func (s *LedgerService) RunSettlement(ctx context.Context, req *connect.Request[api.RunSettlementRequest]) (*connect.Response[api.RunSettlementResponse], error) {
	asOf := s.now()
	if req.Msg.AsOf != 0 {
		asOf = time.Unix(req.Msg.AsOf, 0)
	}
	slog.Info("Settlement run requested",
		"as_of", asOf.Format(time.RFC3339),
		"host_id", req.Msg.HostID,
		"caller", middleware.GetCaller(ctx),
	)

	if req.Msg.HostID != "" {
		sr, err := s.settlement.RunHost(ctx, req.Msg.HostID, asOf)
		if err != nil {
			return nil, connectError(err)
		}
		resp := &api.RunSettlementResponse{Requests: []*api.SettlementRequest{}}
		if sr == nil {
			resp.Skipped = []string{req.Msg.HostID}
		} else {
			resp.Requests = append(resp.Requests, toAPISettlement(sr))
		}
		return connect.NewResponse(resp), nil
	}

	report, err := s.settlement.Run(ctx, asOf)
	if err != nil {
		return nil, connectError(err)
	}
	resp := &api.RunSettlementResponse{
		Requests: toAPISettlements(report.Requests),
		Skipped:  report.Skipped,
	}
	if len(report.Failed) > 0 {
		resp.Failed = make(map[string]string, len(report.Failed))
		for hostID, err := range report.Failed {
			resp.Failed[hostID] = err.Error()
		}
	}
	return connect.NewResponse(resp), nil
}

// ApproveSettlement is the approval callback of the expense workflow.
func (s *LedgerService) ApproveSettlement(ctx context.Context, req *connect.Request[api.ApproveSettlementRequest]) (*connect.Response[api.ApproveSettlementResponse], error) {
	sr, err := s.settlement.Approve(ctx, req.Msg.ID)
	if err != nil {
		return nil, connectError(err)
	}
	slog.Info("Settlement approved", "settlement_request_id", sr.ID, "caller", middleware.GetCaller(ctx))
	return connect.NewResponse(&api.ApproveSettlementResponse{Request: toAPISettlement(sr)}), nil
}

// PaySettlement is the payment callback of the expense workflow.
func (s *LedgerService) PaySettlement(ctx context.Context, req *connect.Request[api.PaySettlementRequest]) (*connect.Response[api.PaySettlementResponse], error) {
	sr, err := s.settlement.MarkPaid(ctx, req.Msg.ID)
	if err != nil {
		return nil, connectError(err)
	}
	slog.Info("Settlement paid", "settlement_request_id", sr.ID, "caller", middleware.GetCaller(ctx))
	return connect.NewResponse(&api.PaySettlementResponse{Request: toAPISettlement(sr)}), nil
}

// ListSettlementRequests returns settlement requests, newest first.
func (s *LedgerService) ListSettlementRequests(ctx context.Context, req *connect.Request[api.ListSettlementRequestsRequest]) (*connect.Response[api.ListSettlementRequestsResponse], error) {
	reqs, err := s.store.ListSettlementRequests(ctx, req.Msg.HostID)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&api.ListSettlementRequestsResponse{Requests: toAPISettlements(reqs)}), nil
}
