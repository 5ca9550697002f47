package sandbox

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/klab/reports/internal/platform/db"
)

type demoPatient struct {
	name   string
	age    int
	gender string
	phone  string
}

var demoPatients = []demoPatient{
	{"John Doe", 45, "Male", "9876543210"},
	{"Jane Smith", 32, "Female", "8765432109"},
	{"Robert Wilson", 58, "Male", "7654321098"},
	{"Mary Johnson", 24, "Female", "6543210987"},
}

// SeedDemo creates the demo patients and two sample reports apiece, one
// FINAL and one DRAFT, with plausible result values around each parameter's
// reference range. Patients that already have reports are skipped so the
// seed stays idempotent.
func (s *Seeder) SeedDemo(ctx context.Context) error {
	return db.WithTx(ctx, s.pool, func(ctx context.Context) error {
		tx := db.TxFromContext(ctx)

		for _, p := range demoPatients {
			var id uuid.UUID
			err := tx.QueryRow(ctx, `
				SELECT id FROM patients WHERE name = $1 AND phone = $2`, p.name, p.phone).Scan(&id)
			if err == pgx.ErrNoRows {
				if _, err := tx.Exec(ctx, `
					INSERT INTO patients (id, name, age, gender, phone)
					VALUES ($1,$2,$3,$4,$5)`,
					uuid.New(), p.name, p.age, p.gender, p.phone); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
		}

		type testRow struct {
			id    uuid.UUID
			price float64
		}
		rows, err := tx.Query(ctx, `SELECT id, price FROM tests`)
		if err != nil {
			return err
		}
		var tests []testRow
		for rows.Next() {
			var t testRow
			if err := rows.Scan(&t.id, &t.price); err != nil {
				rows.Close()
				return err
			}
			tests = append(tests, t)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(tests) == 0 {
			s.log.Warn().Msg("no tests in catalog, skipping demo reports")
			return nil
		}

		prows, err := tx.Query(ctx, `SELECT id FROM patients`)
		if err != nil {
			return err
		}
		var patientIDs []uuid.UUID
		for prows.Next() {
			var id uuid.UUID
			if err := prows.Scan(&id); err != nil {
				prows.Close()
				return err
			}
			patientIDs = append(patientIDs, id)
		}
		prows.Close()
		if err := prows.Err(); err != nil {
			return err
		}

		for _, pid := range patientIDs {
			var existing int
			if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM reports WHERE patient_id = $1`, pid).Scan(&existing); err != nil {
				return err
			}
			if existing > 0 {
				continue
			}
			for i := 0; i < 2; i++ {
				test := tests[rand.Intn(len(tests))]
				status := "FINAL"
				if i > 0 {
					status = "DRAFT"
				}
				reportID := uuid.New()
				if _, err := tx.Exec(ctx, `
					INSERT INTO reports (id, patient_id, status, total_amount, bill_number, referring_doctor)
					VALUES ($1,$2,$3,$4,$5,$6)`,
					reportID, pid, status, test.price,
					fmt.Sprintf("BILL-%d", 1000+rand.Intn(9000)), "Dr. Self"); err != nil {
					return err
				}
				if err := s.seedResults(ctx, reportID, test.id); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// seedResults fills one demo report with values skewed toward NORMAL but
// with occasional LOW and HIGH outliers.
func (s *Seeder) seedResults(ctx context.Context, reportID, testID uuid.UUID) error {
	tx := db.TxFromContext(ctx)

	type paramRow struct {
		id  uuid.UUID
		min *float64
		max *float64
	}
	rows, err := tx.Query(ctx, `
		SELECT id, min_range, max_range FROM test_parameters WHERE test_id = $1`, testID)
	if err != nil {
		return err
	}
	var params []paramRow
	for rows.Next() {
		var p paramRow
		if err := rows.Scan(&p.id, &p.min, &p.max); err != nil {
			rows.Close()
			return err
		}
		params = append(params, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range params {
		var value float64
		if p.min != nil && p.max != nil {
			switch r := rand.Float64(); {
			case r < 0.7:
				value = *p.min + rand.Float64()*(*p.max-*p.min)
			case r < 0.85:
				value = *p.min - rand.Float64()*(*p.min*0.2)
			default:
				value = *p.max + rand.Float64()*(*p.max*0.2)
			}
		} else {
			value = rand.Float64() * 100
		}

		status := "NORMAL"
		if p.min != nil && value < *p.min {
			status = "LOW"
		}
		if p.max != nil && value > *p.max {
			status = "HIGH"
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO report_results (id, report_id, parameter_id, result_value, status)
			VALUES ($1,$2,$3,$4,$5)`,
			uuid.New(), reportID, p.id, fmt.Sprintf("%.1f", value), status); err != nil {
			return err
		}
	}
	return nil
}
