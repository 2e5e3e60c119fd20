package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmynk/hostledger/internal/models"
)

func TestEntryFilter_Where(t *testing.T) {
	tests := []struct {
		name     string
		filter   EntryFilter
		ph       Placeholder
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "empty filter",
			ph:      QuestionMark,
			wantSQL: " ORDER BY id",
		},
		{
			name:     "entity on either side",
			filter:   EntryFilter{EntityID: "e1"},
			ph:       Dollar,
			wantSQL:  " WHERE (from_entity_id = $1 OR to_entity_id = $2) ORDER BY id",
			wantArgs: []any{"e1", "e1"},
		},
		{
			name: "kinds statuses and cutoff",
			filter: EntryFilter{
				HostEntityID:  "h",
				Kinds:         []models.Kind{models.KindHostFeeShareDebt, models.KindPlatformTipDebt},
				Statuses:      []models.SettlementStatus{models.StatusOwed},
				CreatedBefore: 42,
				Limit:         10,
			},
			ph: Dollar,
			wantSQL: " WHERE host_entity_id = $1 AND kind IN ($2, $3) AND settlement_status IN ($4)" +
				" AND created_at < $5 ORDER BY id LIMIT 10",
			wantArgs: []any{"h", "HOST_FEE_SHARE_DEBT", "PLATFORM_TIP_DEBT", "OWED", int64(42)},
		},
		{
			name:     "point in time",
			filter:   EntryFilter{EntityID: "e1", AsOf: 42},
			ph:       QuestionMark,
			wantSQL:  " WHERE (from_entity_id = ? OR to_entity_id = ?) AND created_at <= ? ORDER BY id",
			wantArgs: []any{"e1", "e1", int64(42)},
		},
		{
			name:     "sqlite placeholders",
			filter:   EntryFilter{GroupID: "g", OrderID: "o"},
			ph:       QuestionMark,
			wantSQL:  " WHERE group_id = ? AND order_id = ? ORDER BY id",
			wantArgs: []any{"g", "o"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := tt.filter.Where(tt.ph)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestIn(t *testing.T) {
	sql, args := In(Dollar, 3, []int64{7, 8})
	assert.Equal(t, "($3, $4)", sql)
	assert.Equal(t, []any{int64(7), int64(8)}, args)
}
