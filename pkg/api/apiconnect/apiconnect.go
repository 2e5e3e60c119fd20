// Package apiconnect wires the hostledger.v1.LedgerService messages to
// Connect handlers and clients using a JSON codec.
//
// This package is written by hand, not generated by protoc-gen-connect-go.
// It follows the generated layout (service name, procedure constants,
// client, handler and Unimplemented stub) so callers read the same, but
// changes to pkg/api must be mirrored here manually.
package apiconnect

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/hostledger/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "hostledger.v1.LedgerService"

// Procedure paths, used for routing and for the auth policy.
const (
	LedgerServiceCreateEntityProcedure           = "/hostledger.v1.LedgerService/CreateEntity"
	LedgerServiceGetEntityProcedure              = "/hostledger.v1.LedgerService/GetEntity"
	LedgerServiceListEntitiesProcedure           = "/hostledger.v1.LedgerService/ListEntities"
	LedgerServiceExecuteOrderProcedure           = "/hostledger.v1.LedgerService/ExecuteOrder"
	LedgerServiceRefundTransactionProcedure      = "/hostledger.v1.LedgerService/RefundTransaction"
	LedgerServiceExecuteExpenseProcedure         = "/hostledger.v1.LedgerService/ExecuteExpense"
	LedgerServiceListEntriesProcedure            = "/hostledger.v1.LedgerService/ListEntries"
	LedgerServiceGetBalanceProcedure             = "/hostledger.v1.LedgerService/GetBalance"
	LedgerServiceGetHostMetricsProcedure         = "/hostledger.v1.LedgerService/GetHostMetrics"
	LedgerServiceValidateLedgerProcedure         = "/hostledger.v1.LedgerService/ValidateLedger"
	LedgerServiceRunSettlementProcedure          = "/hostledger.v1.LedgerService/RunSettlement"
	LedgerServiceApproveSettlementProcedure      = "/hostledger.v1.LedgerService/ApproveSettlement"
	LedgerServicePaySettlementProcedure          = "/hostledger.v1.LedgerService/PaySettlement"
	LedgerServiceListSettlementRequestsProcedure = "/hostledger.v1.LedgerService/ListSettlementRequests"
)

// jsonCodec marshals plain Go structs. It replaces connect's protobuf-only
// "json" codec.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// LedgerServiceClient is a client for the hostledger.v1.LedgerService service.
type LedgerServiceClient interface {
	CreateEntity(context.Context, *connect.Request[api.CreateEntityRequest]) (*connect.Response[api.CreateEntityResponse], error)
	GetEntity(context.Context, *connect.Request[api.GetEntityRequest]) (*connect.Response[api.GetEntityResponse], error)
	ListEntities(context.Context, *connect.Request[api.ListEntitiesRequest]) (*connect.Response[api.ListEntitiesResponse], error)
	ExecuteOrder(context.Context, *connect.Request[api.ExecuteOrderRequest]) (*connect.Response[api.ExecuteOrderResponse], error)
	RefundTransaction(context.Context, *connect.Request[api.RefundTransactionRequest]) (*connect.Response[api.RefundTransactionResponse], error)
	ExecuteExpense(context.Context, *connect.Request[api.ExecuteExpenseRequest]) (*connect.Response[api.ExecuteExpenseResponse], error)
	ListEntries(context.Context, *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error)
	GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error)
	GetHostMetrics(context.Context, *connect.Request[api.GetHostMetricsRequest]) (*connect.Response[api.GetHostMetricsResponse], error)
	ValidateLedger(context.Context, *connect.Request[api.ValidateLedgerRequest]) (*connect.Response[api.ValidateLedgerResponse], error)
	RunSettlement(context.Context, *connect.Request[api.RunSettlementRequest]) (*connect.Response[api.RunSettlementResponse], error)
	ApproveSettlement(context.Context, *connect.Request[api.ApproveSettlementRequest]) (*connect.Response[api.ApproveSettlementResponse], error)
	PaySettlement(context.Context, *connect.Request[api.PaySettlementRequest]) (*connect.Response[api.PaySettlementResponse], error)
	ListSettlementRequests(context.Context, *connect.Request[api.ListSettlementRequestsRequest]) (*connect.Response[api.ListSettlementRequestsResponse], error)
}

// NewLedgerServiceClient constructs a client for the
// hostledger.v1.LedgerService service. baseURL is the server root, e.g.
// http://localhost:8080.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &ledgerServiceClient{
		createEntity:           connect.NewClient[api.CreateEntityRequest, api.CreateEntityResponse](httpClient, baseURL+LedgerServiceCreateEntityProcedure, opts...),
		getEntity:              connect.NewClient[api.GetEntityRequest, api.GetEntityResponse](httpClient, baseURL+LedgerServiceGetEntityProcedure, opts...),
		listEntities:           connect.NewClient[api.ListEntitiesRequest, api.ListEntitiesResponse](httpClient, baseURL+LedgerServiceListEntitiesProcedure, opts...),
		executeOrder:           connect.NewClient[api.ExecuteOrderRequest, api.ExecuteOrderResponse](httpClient, baseURL+LedgerServiceExecuteOrderProcedure, opts...),
		refundTransaction:      connect.NewClient[api.RefundTransactionRequest, api.RefundTransactionResponse](httpClient, baseURL+LedgerServiceRefundTransactionProcedure, opts...),
		executeExpense:         connect.NewClient[api.ExecuteExpenseRequest, api.ExecuteExpenseResponse](httpClient, baseURL+LedgerServiceExecuteExpenseProcedure, opts...),
		listEntries:            connect.NewClient[api.ListEntriesRequest, api.ListEntriesResponse](httpClient, baseURL+LedgerServiceListEntriesProcedure, opts...),
		getBalance:             connect.NewClient[api.GetBalanceRequest, api.GetBalanceResponse](httpClient, baseURL+LedgerServiceGetBalanceProcedure, opts...),
		getHostMetrics:         connect.NewClient[api.GetHostMetricsRequest, api.GetHostMetricsResponse](httpClient, baseURL+LedgerServiceGetHostMetricsProcedure, opts...),
		validateLedger:         connect.NewClient[api.ValidateLedgerRequest, api.ValidateLedgerResponse](httpClient, baseURL+LedgerServiceValidateLedgerProcedure, opts...),
		runSettlement:          connect.NewClient[api.RunSettlementRequest, api.RunSettlementResponse](httpClient, baseURL+LedgerServiceRunSettlementProcedure, opts...),
		approveSettlement:      connect.NewClient[api.ApproveSettlementRequest, api.ApproveSettlementResponse](httpClient, baseURL+LedgerServiceApproveSettlementProcedure, opts...),
		paySettlement:          connect.NewClient[api.PaySettlementRequest, api.PaySettlementResponse](httpClient, baseURL+LedgerServicePaySettlementProcedure, opts...),
		listSettlementRequests: connect.NewClient[api.ListSettlementRequestsRequest, api.ListSettlementRequestsResponse](httpClient, baseURL+LedgerServiceListSettlementRequestsProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	createEntity           *connect.Client[api.CreateEntityRequest, api.CreateEntityResponse]
	getEntity              *connect.Client[api.GetEntityRequest, api.GetEntityResponse]
	listEntities           *connect.Client[api.ListEntitiesRequest, api.ListEntitiesResponse]
	executeOrder           *connect.Client[api.ExecuteOrderRequest, api.ExecuteOrderResponse]
	refundTransaction      *connect.Client[api.RefundTransactionRequest, api.RefundTransactionResponse]
	executeExpense         *connect.Client[api.ExecuteExpenseRequest, api.ExecuteExpenseResponse]
	listEntries            *connect.Client[api.ListEntriesRequest, api.ListEntriesResponse]
	getBalance             *connect.Client[api.GetBalanceRequest, api.GetBalanceResponse]
	getHostMetrics         *connect.Client[api.GetHostMetricsRequest, api.GetHostMetricsResponse]
	validateLedger         *connect.Client[api.ValidateLedgerRequest, api.ValidateLedgerResponse]
	runSettlement          *connect.Client[api.RunSettlementRequest, api.RunSettlementResponse]
	approveSettlement      *connect.Client[api.ApproveSettlementRequest, api.ApproveSettlementResponse]
	paySettlement          *connect.Client[api.PaySettlementRequest, api.PaySettlementResponse]
	listSettlementRequests *connect.Client[api.ListSettlementRequestsRequest, api.ListSettlementRequestsResponse]
}

func (c *ledgerServiceClient) CreateEntity(ctx context.Context, req *connect.Request[api.CreateEntityRequest]) (*connect.Response[api.CreateEntityResponse], error) {
	return c.createEntity.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetEntity(ctx context.Context, req *connect.Request[api.GetEntityRequest]) (*connect.Response[api.GetEntityResponse], error) {
	return c.getEntity.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListEntities(ctx context.Context, req *connect.Request[api.ListEntitiesRequest]) (*connect.Response[api.ListEntitiesResponse], error) {
	return c.listEntities.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ExecuteOrder(ctx context.Context, req *connect.Request[api.ExecuteOrderRequest]) (*connect.Response[api.ExecuteOrderResponse], error) {
	return c.executeOrder.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RefundTransaction(ctx context.Context, req *connect.Request[api.RefundTransactionRequest]) (*connect.Response[api.RefundTransactionResponse], error) {
	return c.refundTransaction.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ExecuteExpense(ctx context.Context, req *connect.Request[api.ExecuteExpenseRequest]) (*connect.Response[api.ExecuteExpenseResponse], error) {
	return c.executeExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListEntries(ctx context.Context, req *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error) {
	return c.listEntries.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetBalance(ctx context.Context, req *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	return c.getBalance.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetHostMetrics(ctx context.Context, req *connect.Request[api.GetHostMetricsRequest]) (*connect.Response[api.GetHostMetricsResponse], error) {
	return c.getHostMetrics.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ValidateLedger(ctx context.Context, req *connect.Request[api.ValidateLedgerRequest]) (*connect.Response[api.ValidateLedgerResponse], error) {
	return c.validateLedger.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RunSettlement(ctx context.Context, req *connect.Request[api.RunSettlementRequest]) (*connect.Response[api.RunSettlementResponse], error) {
	return c.runSettlement.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ApproveSettlement(ctx context.Context, req *connect.Request[api.ApproveSettlementRequest]) (*connect.Response[api.ApproveSettlementResponse], error) {
	return c.approveSettlement.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) PaySettlement(ctx context.Context, req *connect.Request[api.PaySettlementRequest]) (*connect.Response[api.PaySettlementResponse], error) {
	return c.paySettlement.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListSettlementRequests(ctx context.Context, req *connect.Request[api.ListSettlementRequestsRequest]) (*connect.Response[api.ListSettlementRequestsResponse], error) {
	return c.listSettlementRequests.CallUnary(ctx, req)
}

// LedgerServiceHandler is implemented by the server side of
// hostledger.v1.LedgerService.
type LedgerServiceHandler interface {
	CreateEntity(context.Context, *connect.Request[api.CreateEntityRequest]) (*connect.Response[api.CreateEntityResponse], error)
	GetEntity(context.Context, *connect.Request[api.GetEntityRequest]) (*connect.Response[api.GetEntityResponse], error)
	ListEntities(context.Context, *connect.Request[api.ListEntitiesRequest]) (*connect.Response[api.ListEntitiesResponse], error)
	ExecuteOrder(context.Context, *connect.Request[api.ExecuteOrderRequest]) (*connect.Response[api.ExecuteOrderResponse], error)
	RefundTransaction(context.Context, *connect.Request[api.RefundTransactionRequest]) (*connect.Response[api.RefundTransactionResponse], error)
	ExecuteExpense(context.Context, *connect.Request[api.ExecuteExpenseRequest]) (*connect.Response[api.ExecuteExpenseResponse], error)
	ListEntries(context.Context, *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error)
	GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error)
	GetHostMetrics(context.Context, *connect.Request[api.GetHostMetricsRequest]) (*connect.Response[api.GetHostMetricsResponse], error)
	ValidateLedger(context.Context, *connect.Request[api.ValidateLedgerRequest]) (*connect.Response[api.ValidateLedgerResponse], error)
	RunSettlement(context.Context, *connect.Request[api.RunSettlementRequest]) (*connect.Response[api.RunSettlementResponse], error)
	ApproveSettlement(context.Context, *connect.Request[api.ApproveSettlementRequest]) (*connect.Response[api.ApproveSettlementResponse], error)
	PaySettlement(context.Context, *connect.Request[api.PaySettlementRequest]) (*connect.Response[api.PaySettlementResponse], error)
	ListSettlementRequests(context.Context, *connect.Request[api.ListSettlementRequestsRequest]) (*connect.Response[api.ListSettlementRequestsResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	routes := map[string]http.Handler{
		LedgerServiceCreateEntityProcedure:           connect.NewUnaryHandler(LedgerServiceCreateEntityProcedure, svc.CreateEntity, opts...),
		LedgerServiceGetEntityProcedure:              connect.NewUnaryHandler(LedgerServiceGetEntityProcedure, svc.GetEntity, opts...),
		LedgerServiceListEntitiesProcedure:           connect.NewUnaryHandler(LedgerServiceListEntitiesProcedure, svc.ListEntities, opts...),
		LedgerServiceExecuteOrderProcedure:           connect.NewUnaryHandler(LedgerServiceExecuteOrderProcedure, svc.ExecuteOrder, opts...),
		LedgerServiceRefundTransactionProcedure:      connect.NewUnaryHandler(LedgerServiceRefundTransactionProcedure, svc.RefundTransaction, opts...),
		LedgerServiceExecuteExpenseProcedure:         connect.NewUnaryHandler(LedgerServiceExecuteExpenseProcedure, svc.ExecuteExpense, opts...),
		LedgerServiceListEntriesProcedure:            connect.NewUnaryHandler(LedgerServiceListEntriesProcedure, svc.ListEntries, opts...),
		LedgerServiceGetBalanceProcedure:             connect.NewUnaryHandler(LedgerServiceGetBalanceProcedure, svc.GetBalance, opts...),
		LedgerServiceGetHostMetricsProcedure:         connect.NewUnaryHandler(LedgerServiceGetHostMetricsProcedure, svc.GetHostMetrics, opts...),
		LedgerServiceValidateLedgerProcedure:         connect.NewUnaryHandler(LedgerServiceValidateLedgerProcedure, svc.ValidateLedger, opts...),
		LedgerServiceRunSettlementProcedure:          connect.NewUnaryHandler(LedgerServiceRunSettlementProcedure, svc.RunSettlement, opts...),
		LedgerServiceApproveSettlementProcedure:      connect.NewUnaryHandler(LedgerServiceApproveSettlementProcedure, svc.ApproveSettlement, opts...),
		LedgerServicePaySettlementProcedure:          connect.NewUnaryHandler(LedgerServicePaySettlementProcedure, svc.PaySettlement, opts...),
		LedgerServiceListSettlementRequestsProcedure: connect.NewUnaryHandler(LedgerServiceListSettlementRequestsProcedure, svc.ListSettlementRequests, opts...),
	}
	return "/" + LedgerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

var errUnimplemented = errors.New("not implemented")

// UnimplementedLedgerServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLedgerServiceHandler struct{}

func (UnimplementedLedgerServiceHandler) CreateEntity(context.Context, *connect.Request[api.CreateEntityRequest]) (*connect.Response[api.CreateEntityResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented)
}

func (UnimplementedLedgerServiceHandler) GetEntity(context.Context, *connect.Request[api.GetEntityRequest]) (*connect.Response[api.GetEntityResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented)
}

func (UnimplementedLedgerServiceHandler) ListEntities(context.Context, *connect.Request[api.ListEntitiesRequest]) (*connect.Response[api.ListEntitiesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented)
}

func (UnimplementedLedgerServiceHandler) ExecuteOrder(context.Context, *connect.Request[api.ExecuteOrderRequest]) (*connect.Response[api.ExecuteOrderResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented)
}

func (UnimplementedLedgerServiceHandler) RefundTransaction(context.Context, *connect.Request[api.RefundTransactionRequest]) (*connect.Response[api.RefundTransactionResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented)
}

func (UnimplementedLedgerServiceHandler) ExecuteExpense(context.Context, *connect.Request[api.ExecuteExpenseRequest]) (*connect.Response[api.ExecuteExpenseResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented)
}

func (UnimplementedLedgerServiceHandler) ListEntries(context.Context, *connect.Request[api.ListEntriesRequest]) (*connect.Response[api.ListEntriesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented)
}

func (UnimplementedLedgerServiceHandler) GetBalance(context.Context, *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented)
}

func (UnimplementedLedgerServiceHandler) GetHostMetrics(context.Context, *connect.Request[api.GetHostMetricsRequest]) (*connect.Response[api.GetHostMetricsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented)
}

func (UnimplementedLedgerServiceHandler) ValidateLedger(context.Context, *connect.Request[api.ValidateLedgerRequest]) (*connect.Response[api.ValidateLedgerResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented)
}

func (UnimplementedLedgerServiceHandler) RunSettlement(context.Context, *connect.Request[api.RunSettlementRequest]) (*connect.Response[api.RunSettlementResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented)
}

func (UnimplementedLedgerServiceHandler) ApproveSettlement(context.Context, *connect.Request[api.ApproveSettlementRequest]) (*connect.Response[api.ApproveSettlementResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented)
}

func (UnimplementedLedgerServiceHandler) PaySettlement(context.Context, *connect.Request[api.PaySettlementRequest]) (*connect.Response[api.PaySettlementResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented)
}

func (UnimplementedLedgerServiceHandler) ListSettlementRequests(context.Context, *connect.Request[api.ListSettlementRequestsRequest]) (*connect.Response[api.ListSettlementRequestsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errUnimplemented)
}
