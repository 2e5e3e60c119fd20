package storage

import (
	"fmt"
	"strings"

	"github.com/mmynk/hostledger/internal/models"
)

// EntryFilter narrows ListEntries. Zero fields do not filter.
type EntryFilter struct {
	// EntityID matches entries where the entity is either party.
	EntityID string

	// HostEntityID matches entries on a host's books.
	HostEntityID string

	GroupID         string
	RefundOfGroupID string
	OrderID         string

	Kinds    []models.Kind
	Statuses []models.SettlementStatus

	// AsOf keeps entries created at or before the timestamp.
	AsOf int64

	// CreatedBefore keeps entries created strictly before the timestamp.
	CreatedBefore int64

	// Limit caps the number of rows returned.
	Limit int
}

// Placeholder renders the n-th (1-based) bind parameter for a SQL dialect.
type Placeholder func(n int) string

// QuestionMark renders SQLite placeholders.
func QuestionMark(int) string { return "?" }

// Dollar renders PostgreSQL placeholders.
func Dollar(n int) string { return fmt.Sprintf("$%d", n) }

// Where renders the filter as a WHERE clause (possibly empty) plus its
// arguments, followed by ordering and limit.
func (f EntryFilter) Where(ph Placeholder) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, vals ...any) {
		for _, v := range vals {
			args = append(args, v)
			cond = strings.Replace(cond, "%s", ph(len(args)), 1)
		}
		conds = append(conds, cond)
	}

	if f.EntityID != "" {
		add("(from_entity_id = %s OR to_entity_id = %s)", f.EntityID, f.EntityID)
	}
	if f.HostEntityID != "" {
		add("host_entity_id = %s", f.HostEntityID)
	}
	if f.GroupID != "" {
		add("group_id = %s", f.GroupID)
	}
	if f.RefundOfGroupID != "" {
		add("refund_of_group_id = %s", f.RefundOfGroupID)
	}
	if f.OrderID != "" {
		add("order_id = %s", f.OrderID)
	}
	if len(f.Kinds) > 0 {
		vals := make([]any, len(f.Kinds))
		for i, k := range f.Kinds {
			vals[i] = string(k)
		}
		add("kind IN ("+marks(len(vals))+")", vals...)
	}
	if len(f.Statuses) > 0 {
		vals := make([]any, len(f.Statuses))
		for i, s := range f.Statuses {
			vals[i] = string(s)
		}
		add("settlement_status IN ("+marks(len(vals))+")", vals...)
	}
	if f.AsOf != 0 {
		add("created_at <= %s", f.AsOf)
	}
	if f.CreatedBefore != 0 {
		add("created_at < %s", f.CreatedBefore)
	}

	var sb strings.Builder
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY id")
	if f.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", f.Limit)
	}
	return sb.String(), args
}

// In renders "(p1, p2, ...)" for ids, numbering placeholders from start.
func In(ph Placeholder, start int, ids []int64) (string, []any) {
	parts := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		parts[i] = ph(start + i)
		args[i] = id
	}
	return "(" + strings.Join(parts, ", ") + ")", args
}

func marks(n int) string {
	return strings.TrimSuffix(strings.Repeat("%s, ", n), ", ")
}
