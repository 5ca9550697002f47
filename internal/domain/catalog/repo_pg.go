package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/klab/reports/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
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

const testCols = `id, test_name, price, department, created_at`

func (r *repoPG) scanTest(row pgx.Row) (*Test, error) {
	var t Test
	err := row.Scan(&t.ID, &t.Name, &t.Price, &t.Department, &t.CreatedAt)
	return &t, err
}

func (r *repoPG) CreateTest(ctx context.Context, t *Test) error {
	t.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO tests (id, test_name, price, department)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at`,
		t.ID, t.Name, t.Price, t.Department).Scan(&t.CreatedAt)
}

func (r *repoPG) GetTest(ctx context.Context, id uuid.UUID) (*Test, error) {
	return r.scanTest(r.conn(ctx).QueryRow(ctx, `SELECT `+testCols+` FROM tests WHERE id = $1`, id))
}

func (r *repoPG) UpdateTest(ctx context.Context, t *Test) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE tests SET test_name=$2, price=$3, department=$4 WHERE id = $1`,
		t.ID, t.Name, t.Price, t.Department)
	return err
}

func (r *repoPG) DeleteTest(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM tests WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListTests(ctx context.Context) ([]Test, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+testCols+` FROM tests ORDER BY test_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Test
	for rows.Next() {
		t, err := r.scanTest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

const paramCols = `id, test_id, param_name, unit, min_range, max_range, gender_specific, created_at`

func (r *repoPG) scanParam(row pgx.Row) (*TestParameter, error) {
	var p TestParameter
	err := row.Scan(&p.ID, &p.TestID, &p.Name, &p.Unit, &p.MinRange, &p.MaxRange,
		&p.GenderSpecific, &p.CreatedAt)
	return &p, err
}

func (r *repoPG) CreateParameter(ctx context.Context, p *TestParameter) error {
	p.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO test_parameters (id, test_id, param_name, unit, min_range, max_range, gender_specific)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at`,
		p.ID, p.TestID, p.Name, p.Unit, p.MinRange, p.MaxRange, p.GenderSpecific).Scan(&p.CreatedAt)
}

func (r *repoPG) GetParameter(ctx context.Context, id uuid.UUID) (*TestParameter, error) {
	return r.scanParam(r.conn(ctx).QueryRow(ctx, `SELECT `+paramCols+` FROM test_parameters WHERE id = $1`, id))
}

func (r *repoPG) UpdateParameter(ctx context.Context, p *TestParameter) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE test_parameters
		SET param_name=$2, unit=$3, min_range=$4, max_range=$5, gender_specific=$6
		WHERE id = $1`,
		p.ID, p.Name, p.Unit, p.MinRange, p.MaxRange, p.GenderSpecific)
	return err
}

func (r *repoPG) DeleteParameter(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM test_parameters WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListParameters(ctx context.Context, testID uuid.UUID) ([]TestParameter, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+paramCols+` FROM test_parameters WHERE test_id = $1 ORDER BY seq`, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TestParameter
	for rows.Next() {
		p, err := r.scanParam(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func (r *repoPG) GetParameters(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]TestParameter, error) {
	out := make(map[uuid.UUID]TestParameter, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+paramCols+` FROM test_parameters WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := r.scanParam(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = *p
	}
	return out, rows.Err()
}
