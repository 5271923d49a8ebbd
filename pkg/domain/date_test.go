package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	t.Run("DateOf drops time of day", func(t *testing.T) {
		a := DateOf(time.Date(2026, 3, 9, 0, 0, 1, 0, time.UTC))
		b := DateOf(time.Date(2026, 3, 9, 23, 59, 59, 0, time.UTC))
		assert.Equal(t, a, b)
		assert.Equal(t, "2026-03-09", a.String())
	})

	t.Run("DateOf uses the time's own location", func(t *testing.T) {
		kolkata := time.FixedZone("IST", 5*3600+1800)
		utcLate := time.Date(2026, 3, 9, 20, 0, 0, 0, time.UTC)
		assert.Equal(t, NewDate(2026, 3, 10), DateOf(utcLate.In(kolkata)))
	})

	t.Run("parse rejects malformed input", func(t *testing.T) {
		_, err := ParseDate("09/03/2026")
		require.Error(t, err)
	})

	t.Run("AddDays crosses month boundaries", func(t *testing.T) {
		assert.Equal(t, NewDate(2026, 3, 1), NewDate(2026, 2, 28).AddDays(1))
		assert.Equal(t, NewDate(2026, 2, 28), NewDate(2026, 3, 1).AddDays(-1))
	})

	t.Run("JSON uses ISO dates and null for zero", func(t *testing.T) {
		type payload struct {
			On      Date  `json:"on"`
			Maybe   *Date `json:"maybe"`
			Missing Date  `json:"missing"`
		}
		d := NewDate(2026, 10, 16)
		raw, err := json.Marshal(payload{On: d, Maybe: &d})
		require.NoError(t, err)
		assert.JSONEq(t, `{"on":"2026-10-16","maybe":"2026-10-16","missing":null}`, string(raw))

		var back payload
		require.NoError(t, json.Unmarshal(raw, &back))
		assert.Equal(t, d, back.On)
		require.NotNil(t, back.Maybe)
		assert.True(t, back.Missing.IsZero())
	})

	t.Run("DatePtr keeps zero dates null", func(t *testing.T) {
		assert.Nil(t, DatePtr(Date{}))
		assert.NotNil(t, DatePtr(NewDate(2026, 1, 1)))
	})
}

func TestDateSQL(t *testing.T) {
	v, err := NewDate(2026, 10, 16).Value()
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16", v)

	v, err = Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var d Date
	require.NoError(t, d.Scan(time.Date(2026, 10, 16, 0, 0, 0, 0, time.FixedZone("X", -5*3600))))
	assert.Equal(t, NewDate(2026, 10, 16), d)

	require.NoError(t, d.Scan([]byte("2026-01-02")))
	assert.Equal(t, NewDate(2026, 1, 2), d)

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}
