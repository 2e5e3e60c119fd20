package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/hostledger/internal/models"
)

const entityColumns = `id, name, role, currency, host_id, host_fee_percent, host_fee_share_percent, created_at`

// CreateEntity inserts a new entity.
func (s *PostgresStore) CreateEntity(ctx context.Context, entity *models.Entity) error {
	if entity.ID == "" {
		entity.ID = uuid.New().String()
	}
	if entity.CreatedAt == 0 {
		entity.CreatedAt = time.Now().Unix()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO entities (`+entityColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entity.ID, entity.Name, string(entity.Role), entity.Currency, entity.HostID,
		entity.HostFeePercent, entity.HostFeeSharePercent, entity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create entity: %w", err)
	}
	return nil
}

// GetEntity retrieves an entity by its ID.
func (q queries) GetEntity(ctx context.Context, id string) (*models.Entity, error) {
	entity, err := scanEntity(q.q.QueryRow(ctx, `SELECT `+entityColumns+` FROM entities WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrEntityNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	return entity, nil
}

// ListEntities returns entities with the given role, or all of them.
func (q queries) ListEntities(ctx context.Context, role models.Role) ([]*models.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities`
	var args []any
	if role != "" {
		query += ` WHERE role = $1`
		args = append(args, string(role))
	}
	query += ` ORDER BY created_at, id`

	rows, err := q.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	var entities []*models.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entities: %w", err)
	}
	return entities, nil
}

func scanEntity(row pgx.Row) (*models.Entity, error) {
	entity := &models.Entity{}
	var role string
	err := row.Scan(
		&entity.ID, &entity.Name, &role, &entity.Currency, &entity.HostID,
		&entity.HostFeePercent, &entity.HostFeeSharePercent, &entity.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	entity.Role = models.Role(role)
	return entity, nil
}
