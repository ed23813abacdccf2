package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// TimeLayout is the ISO-8601 layout used for every timestamp stored in the database
// Values are always in UTC and without a zone suffix, so they sort lexicographically
const TimeLayout = "2006-01-02T15:04:05"

// Timestamp is a time that is stored as ISO-8601 text
// The zero value is stored as NULL
type Timestamp struct {
	time.Time
}

// NewTimestamp returns a Timestamp truncated to the second, in UTC
func NewTimestamp(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{Time: t.UTC().Truncate(time.Second)}
}

// ParseTimestamp parses a value in TimeLayout
func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		return Timestamp{}, err
	}
	return Timestamp{Time: t}, nil
}

// IsSet returns true if the timestamp has a value
func (t Timestamp) IsSet() bool {
	return !t.Time.IsZero()
}

// String returns the ISO-8601 representation, or an empty string when unset
func (t Timestamp) String() string {
	if !t.IsSet() {
		return ""
	}
	return t.Time.UTC().Format(TimeLayout)
}

// Value implements driver.Valuer
func (t Timestamp) Value() (driver.Value, error) {
	if !t.IsSet() {
		return nil, nil
	}
	return t.String(), nil
}

// Scan implements sql.Scanner
func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Timestamp{}
		return nil
	case string:
		return t.scanString(v)
	case []byte:
		return t.scanString(string(v))
	case time.Time:
		*t = NewTimestamp(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
}

func (t *Timestamp) scanString(s string) error {
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		// Rows written by other tools may carry a zone or fractional seconds
		rfc, rfcErr := time.Parse(time.RFC3339Nano, s)
		if rfcErr != nil {
			return fmt.Errorf("invalid timestamp '%s': %w", s, err)
		}
		parsed = NewTimestamp(rfc)
	}
	*t = parsed
	return nil
}
