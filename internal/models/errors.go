package models

import "errors"

// Sentinel errors shared by the ledger, settlement and storage layers.
var (
	ErrInvalidFeeConfiguration       = errors.New("invalid fee configuration")
	ErrCurrencyConversionUnavailable = errors.New("currency conversion unavailable")
	ErrInsufficientAuthorization     = errors.New("payment not confirmed")
	ErrTransactionNotFound           = errors.New("transaction not found")
	ErrNotRefundable                 = errors.New("transaction is not refundable")
	ErrOverRefund                    = errors.New("refund exceeds refundable amount")
	ErrSettlementConflict            = errors.New("concurrent settlement detected")
	ErrSettlementNotFound            = errors.New("settlement request not found")
	ErrInvalidSettlementState        = errors.New("invalid settlement request state")
	ErrEntityNotFound                = errors.New("entity not found")
	ErrUnbalancedGroup               = errors.New("unbalanced entry group")
	ErrInvalidRequest                = errors.New("invalid request")
	ErrInsufficientFunds             = errors.New("insufficient funds")
	ErrDuplicateOrder                = errors.New("order already recorded")
)
