package db

import (
	"strings"

	"gorm.io/gorm"
)

// PrepareSQLite adjusts a sqlite connection so the raw SQL written for
// postgres still runs: sqlite has no row locking, so FOR UPDATE clauses
// are stripped and the pool is capped at one connection to keep
// transactions serialized.
func PrepareSQLite(conn *gorm.DB) error {
	strip := func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			newSQL := strings.ReplaceAll(sql, "FOR UPDATE", "")
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(newSQL)
		}
	}
	if err := conn.Callback().Query().Before("gorm:query").Register("sqlite_strip_for_update", strip); err != nil {
		return err
	}
	if err := conn.Callback().Row().Before("gorm:row").Register("sqlite_strip_for_update_row", strip); err != nil {
		return err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	return nil
}
