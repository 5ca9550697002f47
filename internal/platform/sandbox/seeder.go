// Package sandbox provisions a fresh installation: the default admin
// account, FREE tier config, lab-profile settings and the reference test
// catalog. It also backs the reset-database maintenance endpoint.
package sandbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/klab/reports/internal/domain/catalog"
	"github.com/klab/reports/internal/domain/identity"
	"github.com/klab/reports/internal/domain/license"
	"github.com/klab/reports/internal/platform/db"
)

type seedParam struct {
	name   string
	unit   string
	min    *float64
	max    *float64
	gender int
}

type seedTest struct {
	name       string
	price      float64
	department string
	params     []seedParam
}

func f(v float64) *float64 { return &v }

// referenceCatalog is the stock test menu installed on first run.
var referenceCatalog = []seedTest{
	{"Complete Blood Count (CBC)", 500, "Haematology", []seedParam{
		{"Haemoglobin", "g/dL", f(13.0), f(17.0), catalog.GenderMale},
		{"Haemoglobin", "g/dL", f(12.0), f(15.0), catalog.GenderFemale},
		{"Total WBC Count", "cells/cumm", f(4000), f(11000), catalog.GenderAny},
		{"Platelet Count", "lakh/cumm", f(1.5), f(4.5), catalog.GenderAny},
		{"RBC Count", "mill/cumm", f(4.5), f(5.5), catalog.GenderMale},
		{"Packed Cell Volume (PCV)", "%", f(40), f(50), catalog.GenderMale},
		{"Neutrophils", "%", f(40), f(75), catalog.GenderAny},
		{"Lymphocytes", "%", f(20), f(45), catalog.GenderAny},
		{"Monocytes", "%", f(2), f(10), catalog.GenderAny},
		{"Eosinophils", "%", f(1), f(6), catalog.GenderAny},
	}},
	{"Liver Function Test (LFT)", 1200, "Biochemistry", []seedParam{
		{"Bilirubin Total", "mg/dL", f(0.2), f(1.2), catalog.GenderAny},
		{"Bilirubin Direct", "mg/dL", f(0.0), f(0.3), catalog.GenderAny},
		{"SGOT (AST)", "U/L", f(5), f(40), catalog.GenderAny},
		{"SGPT (ALT)", "U/L", f(7), f(56), catalog.GenderAny},
		{"Alkaline Phosphatase", "U/L", f(44), f(147), catalog.GenderAny},
		{"Total Protein", "g/dL", f(6.0), f(8.3), catalog.GenderAny},
		{"Albumin", "g/dL", f(3.4), f(5.4), catalog.GenderAny},
	}},
	{"Kidney Function Test (KFT)", 1000, "Biochemistry", []seedParam{
		{"Urea", "mg/dL", f(7), f(20), catalog.GenderAny},
		{"Creatinine", "mg/dL", f(0.7), f(1.3), catalog.GenderMale},
		{"Creatinine", "mg/dL", f(0.6), f(1.1), catalog.GenderFemale},
		{"Uric Acid", "mg/dL", f(3.4), f(7.0), catalog.GenderMale},
		{"Calcium", "mg/dL", f(8.5), f(10.2), catalog.GenderAny},
	}},
	{"Lipid Profile", 800, "Biochemistry", []seedParam{
		{"Total Cholesterol", "mg/dL", f(125), f(200), catalog.GenderAny},
		{"Triglycerides", "mg/dL", f(0), f(150), catalog.GenderAny},
		{"HDL Cholesterol", "mg/dL", f(40), f(60), catalog.GenderAny},
		{"LDL Cholesterol", "mg/dL", f(0), f(100), catalog.GenderAny},
	}},
	{"Thyroid Profile (T3, T4, TSH)", 1500, "Endocrinology", []seedParam{
		{"Total T3", "ng/dL", f(80), f(200), catalog.GenderAny},
		{"Total T4", "mcg/dL", f(5.0), f(12.0), catalog.GenderAny},
		{"TSH", "uIU/mL", f(0.4), f(4.0), catalog.GenderAny},
	}},
	{"Blood Sugar (Fasting)", 150, "Biochemistry", []seedParam{
		{"Fasting Plasma Glucose", "mg/dL", f(70), f(99), catalog.GenderAny},
	}},
	{"HbA1c", 600, "Biochemistry", []seedParam{
		{"HbA1c", "%", f(4.0), f(5.6), catalog.GenderAny},
	}},
}

// defaultSettings is the lab profile installed when the settings table is
// empty.
var defaultSettings = [][2]string{
	{"lab_name", "kLab Diagnostic Centre"},
	{"address_line1", "123 Health Street"},
	{"address_line2", "Medical District"},
	{"phone", "(555) 123-4567"},
	{"email", "reports@klab.com"},
	{"website", "www.klab.com"},
}

type Seeder struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func NewSeeder(pool *pgxpool.Pool, log zerolog.Logger) *Seeder {
	return &Seeder{pool: pool, log: log}
}

// EnsureDefaults makes a fresh database usable: an admin/admin123 account,
// FREE tier config with the install date, and the default lab profile. Each
// block only fires when its table has nothing yet, so running it on every
// start is safe.
func (s *Seeder) EnsureDefaults(ctx context.Context) error {
	var adminCount int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE username = 'admin'`).Scan(&adminCount)
	if err != nil {
		return err
	}
	if adminCount == 0 {
		_, err = s.pool.Exec(ctx, `
			INSERT INTO users (id, username, password, full_name, role)
			VALUES ($1, 'admin', 'admin123', 'Lab Admin', $2)`,
			uuid.New(), identity.RoleAdmin)
		if err != nil {
			return err
		}
		s.log.Info().Msg("default admin user created")
	}

	var tierCount int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM app_config WHERE config_key = $1`, license.KeyTier).Scan(&tierCount); err != nil {
		return err
	}
	if tierCount == 0 {
		batch := [][2]string{
			{license.KeyTier, license.TierFree},
			{license.KeyInstallDate, time.Now().Format(time.RFC3339)},
		}
		for _, kv := range batch {
			if _, err := s.pool.Exec(ctx, `
				INSERT INTO app_config (config_key, config_value) VALUES ($1, $2)`, kv[0], kv[1]); err != nil {
				return err
			}
		}
		s.log.Info().Msg("app initialized on FREE tier")
	}

	var settingsCount int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM settings`).Scan(&settingsCount); err != nil {
		return err
	}
	if settingsCount == 0 {
		for _, kv := range defaultSettings {
			if _, err := s.pool.Exec(ctx, `
				INSERT INTO settings (key, value) VALUES ($1, $2)`, kv[0], kv[1]); err != nil {
				return err
			}
		}
		s.log.Info().Msg("default laboratory settings initialized")
	}
	return nil
}

// AutoSeed fills an empty installation with the reference catalog and demo
// data. It keys off the patient directory so a server start never clobbers a
// database that is already in use.
func (s *Seeder) AutoSeed(ctx context.Context) error {
	var patientCount int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&patientCount); err != nil {
		return err
	}
	if patientCount > 0 {
		return nil
	}
	s.log.Info().Msg("database empty, performing auto-seed")
	if err := s.SeedCatalog(ctx); err != nil {
		return err
	}
	return s.SeedDemo(ctx)
}

// SeedCatalog installs the reference test menu. Existing tests keep their
// row but get their parameter set rewritten, so re-seeding refreshes ranges
// without breaking report references to test ids.
func (s *Seeder) SeedCatalog(ctx context.Context) error {
	return db.WithTx(ctx, s.pool, func(ctx context.Context) error {
		tx := db.TxFromContext(ctx)
		for _, t := range referenceCatalog {
			var testID uuid.UUID
			err := tx.QueryRow(ctx, `SELECT id FROM tests WHERE test_name = $1`, t.name).Scan(&testID)
			if err != nil {
				testID = uuid.New()
				if _, err := tx.Exec(ctx, `
					INSERT INTO tests (id, test_name, price, department)
					VALUES ($1,$2,$3,$4)`, testID, t.name, t.price, t.department); err != nil {
					return err
				}
			}
			if _, err := tx.Exec(ctx, `DELETE FROM test_parameters WHERE test_id = $1`, testID); err != nil {
				return err
			}
			for _, p := range t.params {
				if _, err := tx.Exec(ctx, `
					INSERT INTO test_parameters (id, test_id, param_name, unit, min_range, max_range, gender_specific)
					VALUES ($1,$2,$3,$4,$5,$6,$7)`,
					uuid.New(), testID, p.name, p.unit, p.min, p.max, p.gender); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
