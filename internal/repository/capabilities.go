package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Capabilities records optional schema features detected once at start-up.
type Capabilities struct {
	// UserDepartment is set when users has a department column.
	UserDepartment bool
}

// ProbeCapabilities inspects the live schema. Call it once after migrations
// and pass the result to the repositories.
func ProbeCapabilities(ctx context.Context, db *sqlx.DB) (Capabilities, error) {
	var columns []struct {
		CID        int     `db:"cid"`
		Name       string  `db:"name"`
		Type       string  `db:"type"`
		NotNull    int     `db:"notnull"`
		Default    *string `db:"dflt_value"`
		PrimaryKey int     `db:"pk"`
	}
	if err := db.SelectContext(ctx, &columns, `PRAGMA table_info(users)`); err != nil {
		return Capabilities{}, fmt.Errorf("probe users columns: %w", err)
	}

	var caps Capabilities
	for _, c := range columns {
		if strings.EqualFold(c.Name, "department") {
			caps.UserDepartment = true
		}
	}
	return caps, nil
}
