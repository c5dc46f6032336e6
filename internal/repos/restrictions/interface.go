package restrictions

import (
	"database/sql"
	"time"
)

type Restrictions interface {
	// IsRestricted reports whether the account has an active restriction
	// at the given time. Read inside the acting transaction so the
	// decision cannot go stale between check and write.
	IsRestricted(tx *sql.Tx, accountID int64, at time.Time) (bool, error)
}
