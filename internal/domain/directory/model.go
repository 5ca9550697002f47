package directory

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table. The directory keeps one row per
// distinct patient name (case-insensitive); demographics are refreshed in
// place each time the patient appears on a new report.
type Patient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Age       int       `db:"age" json:"age"`
	Gender    string    `db:"gender" json:"gender"`
	Phone     string    `db:"phone" json:"phone"`
	Address   string    `db:"address" json:"address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
