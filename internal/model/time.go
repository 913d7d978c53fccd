// Package model defines the domain entities exchanged between the HTTP layer
// and the repositories. All timestamps cross the wire as epoch milliseconds;
// the EpochMillis type is the single conversion boundary.
package model

import (
	"strconv"
	"time"
)

// EpochMillis wraps time.Time and serializes as an epoch-millisecond integer.
// The database stores TIMESTAMPTZ; repositories scan into time.Time and wrap
// it here, so no other layer performs unit conversion.
type EpochMillis struct {
	time.Time
}

// Millis constructs an EpochMillis from an epoch-millisecond value.
// Zero maps to the zero time.
func Millis(ms int64) EpochMillis {
	if ms == 0 {
		return EpochMillis{}
	}
	return EpochMillis{time.UnixMilli(ms).UTC()}
}

// FromTime wraps a time.Time, normalizing to UTC.
func FromTime(t time.Time) EpochMillis {
	if t.IsZero() {
		return EpochMillis{}
	}
	return EpochMillis{t.UTC()}
}

// MarshalJSON encodes the timestamp as an integer number of milliseconds.
// The zero time encodes as 0.
func (e EpochMillis) MarshalJSON() ([]byte, error) {
	if e.IsZero() {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatInt(e.UnixMilli(), 10)), nil
}

// UnmarshalJSON accepts an epoch-millisecond integer. 0 and null both decode
// to the zero time.
func (e *EpochMillis) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == "0" {
		*e = EpochMillis{}
		return nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*e = EpochMillis{time.UnixMilli(ms).UTC()}
	return nil
}
