package sandbox

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/klab/reports/internal/platform/db"
)

// wipeOrder deletes child tables before their parents.
var wipeOrder = []string{
	"report_results",
	"reports",
	"patients",
	"test_parameters",
	"tests",
	"users",
	"app_config",
	"settings",
}

type ResetHandler struct {
	pool   *pgxpool.Pool
	seeder *Seeder
}

func NewResetHandler(pool *pgxpool.Pool, seeder *Seeder) *ResetHandler {
	return &ResetHandler{pool: pool, seeder: seeder}
}

func (h *ResetHandler) RegisterRoutes(api *echo.Group) {
	api.POST("/reset-database", h.ResetDatabase)
}

// ResetDatabase wipes every table and reinstalls defaults and the reference
// catalog. The wipe is one transaction; a failure leaves the data intact.
func (h *ResetHandler) ResetDatabase(c echo.Context) error {
	ctx := c.Request().Context()

	err := db.WithTx(ctx, h.pool, func(ctx context.Context) error {
		tx := db.TxFromContext(ctx)
		for _, table := range wipeOrder {
			if _, err := tx.Exec(ctx, `DELETE FROM `+table); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.seeder.EnsureDefaults(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.seeder.SeedCatalog(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.seeder.SeedDemo(ctx); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	counts := map[string]int{}
	for _, table := range []string{"patients", "reports", "tests"} {
		var n int
		if err := h.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		counts[table] = n
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("System fully reset and seeded. Seeded %d patients and %d reports.",
			counts["patients"], counts["reports"]),
		"counts": counts,
	})
}
