package report

import (
	"context"
	"time"

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

const reportCols = `id, patient_id, total_amount, status, referring_doctor,
	sample_collection_date, bill_number, created_at, updated_at`

func (r *repoPG) scanReport(row pgx.Row) (*Report, error) {
	var rep Report
	err := row.Scan(&rep.ID, &rep.PatientID, &rep.TotalAmount, &rep.Status,
		&rep.ReferringDoctor, &rep.SampleCollectionDate, &rep.BillNumber,
		&rep.CreatedAt, &rep.UpdatedAt)
	return &rep, err
}

func (r *repoPG) insertResults(ctx context.Context, reportID uuid.UUID, results []Result) error {
	for i := range results {
		results[i].ID = uuid.New()
		results[i].ReportID = reportID
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO report_results (id, report_id, parameter_id, result_value, status, remarks)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			results[i].ID, reportID, results[i].ParameterID,
			results[i].ResultValue, results[i].Status, results[i].Remarks)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) CreateWithResults(ctx context.Context, rep *Report, results []Result) error {
	rep.ID = uuid.New()
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		err := r.conn(ctx).QueryRow(ctx, `
			INSERT INTO reports (id, patient_id, total_amount, status,
				referring_doctor, sample_collection_date, bill_number)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING created_at, updated_at`,
			rep.ID, rep.PatientID, rep.TotalAmount, rep.Status,
			rep.ReferringDoctor, rep.SampleCollectionDate, rep.BillNumber).Scan(&rep.CreatedAt, &rep.UpdatedAt)
		if err != nil {
			return err
		}
		return r.insertResults(ctx, rep.ID, results)
	})
}

func (r *repoPG) UpdateWithResults(ctx context.Context, rep *Report, results []Result) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		tag, err := r.conn(ctx).Exec(ctx, `
			UPDATE reports SET patient_id=$2, total_amount=$3, status=$4,
				referring_doctor=$5, sample_collection_date=$6, bill_number=$7,
				updated_at=NOW()
			WHERE id = $1`,
			rep.ID, rep.PatientID, rep.TotalAmount, rep.Status,
			rep.ReferringDoctor, rep.SampleCollectionDate, rep.BillNumber)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err := r.conn(ctx).Exec(ctx, `DELETE FROM report_results WHERE report_id = $1`, rep.ID); err != nil {
			return err
		}
		return r.insertResults(ctx, rep.ID, results)
	})
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) GetHeader(ctx context.Context, id uuid.UUID) (*Report, error) {
	return r.scanReport(r.conn(ctx).QueryRow(ctx, `SELECT `+reportCols+` FROM reports WHERE id = $1`, id))
}

func (r *repoPG) GetDetail(ctx context.Context, id uuid.UUID) (*Detail, error) {
	var d Detail
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT r.id, r.patient_id, r.total_amount, r.status, r.referring_doctor,
			r.sample_collection_date, r.bill_number, r.created_at, r.updated_at,
			p.name, p.age, p.gender, p.phone
		FROM reports r
		JOIN patients p ON r.patient_id = p.id
		WHERE r.id = $1`, id).Scan(
		&d.ID, &d.PatientID, &d.TotalAmount, &d.Status, &d.ReferringDoctor,
		&d.SampleCollectionDate, &d.BillNumber, &d.CreatedAt, &d.UpdatedAt,
		&d.PatientName, &d.PatientAge, &d.PatientGender, &d.PatientPhone)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT rr.id, rr.report_id, rr.parameter_id, rr.result_value, rr.status, rr.remarks,
			tp.param_name, tp.unit, tp.min_range, tp.max_range, tp.test_id, t.test_name
		FROM report_results rr
		JOIN test_parameters tp ON rr.parameter_id = tp.id
		JOIN tests t ON tp.test_id = t.id
		WHERE rr.report_id = $1
		ORDER BY t.test_name, tp.param_name`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	d.Results = []DetailResult{}
	for rows.Next() {
		var dr DetailResult
		if err := rows.Scan(&dr.ID, &dr.ReportID, &dr.ParameterID, &dr.ResultValue,
			&dr.Status, &dr.Remarks, &dr.ParamName, &dr.Unit, &dr.MinRange,
			&dr.MaxRange, &dr.TestID, &dr.TestName); err != nil {
			return nil, err
		}
		d.Results = append(d.Results, dr)
	}
	return &d, rows.Err()
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]Summary, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM reports`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT r.id, r.patient_id, r.total_amount, r.status, r.referring_doctor,
			r.sample_collection_date, r.bill_number, r.created_at, r.updated_at,
			p.name, p.age, p.gender,
			COALESCE((
				SELECT string_agg(DISTINCT t.test_name, ', ')
				FROM report_results rr
				JOIN test_parameters tp ON rr.parameter_id = tp.id
				JOIN tests t ON tp.test_id = t.id
				WHERE rr.report_id = r.id
			), '')
		FROM reports r
		JOIN patients p ON r.patient_id = p.id
		ORDER BY r.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.PatientID, &s.TotalAmount, &s.Status,
			&s.ReferringDoctor, &s.SampleCollectionDate, &s.BillNumber,
			&s.CreatedAt, &s.UpdatedAt,
			&s.PatientName, &s.PatientAge, &s.PatientGender, &s.TestNames); err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CountFinalSince(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM reports WHERE status = $1 AND created_at >= $2`,
		StatusFinal, cutoff).Scan(&count)
	return count, err
}

func (r *repoPG) LatestBillNumber(ctx context.Context) (string, error) {
	var bill string
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT bill_number FROM reports
		WHERE bill_number IS NOT NULL
		ORDER BY created_at DESC
		LIMIT 1`).Scan(&bill)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	return bill, err
}
