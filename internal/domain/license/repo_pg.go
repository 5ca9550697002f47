package license

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/klab/reports/internal/platform/db"
)

type queryable interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) GetValue(ctx context.Context, key string) (string, error) {
	var value string
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT config_value FROM app_config WHERE config_key = $1`, key).Scan(&value)
	return value, err
}

func (r *repoPG) SetValue(ctx context.Context, key, value string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO app_config (config_key, config_value)
		VALUES ($1, $2)
		ON CONFLICT (config_key) DO UPDATE SET config_value = EXCLUDED.config_value`,
		key, value)
	return err
}
