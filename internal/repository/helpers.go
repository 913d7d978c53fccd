package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/ritualplanner/ritualplanner/internal/model"
)

// ensureID keeps a client-supplied id or generates a fresh UUID when absent.
func ensureID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// nullTime converts a wire timestamp into a nullable SQL argument.
func nullTime(e model.EpochMillis) any {
	if e.IsZero() {
		return nil
	}
	return e.Time
}

// nullStr converts an optional reference id into a nullable SQL argument.
func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// fromNullTime unwraps a scanned nullable timestamp.
func fromNullTime(nt sql.NullTime) model.EpochMillis {
	if !nt.Valid {
		return model.EpochMillis{}
	}
	return model.FromTime(nt.Time)
}

// fromNullStr unwraps a scanned nullable string.
func fromNullStr(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}
