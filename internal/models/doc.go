// Package models defines the core domain models for the host ledger.
//
// # Parties
//
// Every party that can hold money is an Entity: contributors, collectives,
// fiscal hosts and the platform itself. The Role field tells them apart so
// that folds over entries treat all parties uniformly.
//
// # Entries
//
// An Entry is one immutable side of a CREDIT/DEBIT pair. Pairs produced by
// one financial event share a GroupID. Entries are append-only: refunds and
// settlements add new groups that reference earlier ones, they never rewrite
// history.
//
// # Settlement
//
// Amounts a host owes the platform (host fee share and platform tips held in
// the host's pooled balance) are tracked through the SettlementStatus of debt
// entries and invoiced periodically through a SettlementRequest.
//
// # Design Principles
//
//  1. Amounts are int64 minor units. Signs come from Direction, never from Amount.
//  2. Converted amounts are frozen at creation time and never recomputed.
//  3. Relationships use ID strings instead of pointers.
package models
