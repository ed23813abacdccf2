package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampValue(t *testing.T) {
	v, err := Timestamp{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	ts := NewTimestamp(time.Date(2024, 3, 1, 10, 20, 30, 999, time.FixedZone("CET", 3600)))
	v, err = ts.Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T09:20:30", v)
}

func TestTimestampScan(t *testing.T) {
	cases := []struct {
		in  any
		out string
		err bool
	}{
		{nil, "", false},
		{"", "", false},
		{"2024-01-01T00:00:00", "2024-01-01T00:00:00", false},
		{[]byte("2024-02-01T12:00:00"), "2024-02-01T12:00:00", false},
		{"2024-02-01T12:00:00+01:00", "2024-02-01T11:00:00", false},
		{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02T03:04:05", false},
		{"not a date", "", true},
		{42, "", true},
	}

	for _, el := range cases {
		var ts Timestamp
		err := ts.Scan(el.in)
		if el.err {
			assert.Error(t, err, "input %v", el.in)
			continue
		}
		require.NoError(t, err, "input %v", el.in)
		assert.Equal(t, el.out, ts.String(), "input %v", el.in)
	}
}
