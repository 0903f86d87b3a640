package valueobject

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Date
	}{
		{"iso", "2025-08-05", NewDate(2025, time.August, 5)},
		{"dashed day first", "05-08-2025", NewDate(2025, time.August, 5)},
		{"slashed day first", "05/08/2025", NewDate(2025, time.August, 5)},
		{"surrounding spaces", " 2025-01-31 ", NewDate(2025, time.January, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := ParseDate("2025/08/05")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseDate("31-02-2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDate_DayNumber(t *testing.T) {
	assert.Equal(t, int64(0), NewDate(1970, time.January, 1).DayNumber())
	assert.Equal(t, int64(1), NewDate(1970, time.January, 2).DayNumber())

	d := NewDate(2025, time.August, 5)
	assert.True(t, d.Equal(FromDayNumber(d.DayNumber())))
	assert.Equal(t, 3, d.AddDays(3).DaysSince(d))
}

func TestDate_Formats(t *testing.T) {
	d := NewDate(2025, time.August, 5)

	assert.Equal(t, "2025-08-05", d.String())
	assert.Equal(t, "20250805", d.Compact())
	assert.Equal(t, "05082025", d.DDMMYYYY())
}

func TestDate_FinancialYear(t *testing.T) {
	assert.Equal(t, "2025-26", NewDate(2025, time.April, 1).FinancialYear())
	assert.Equal(t, "2024-25", NewDate(2025, time.March, 31).FinancialYear())
	assert.Equal(t, "1999-00", NewDate(1999, time.December, 1).FinancialYear())
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Date Date  `json:"date"`
		Opt  *Date `json:"opt,omitempty"`
	}

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"date":"05/08/2025"}`), &p))
	assert.Equal(t, "2025-08-05", p.Date.String())
	assert.Nil(t, p.Opt)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-08-05"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"tomorrow"}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"date":20250805}`), &p))
}

func TestDate_ValueScan(t *testing.T) {
	d := NewDate(2025, time.August, 5)

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, d.DayNumber(), v)

	var scanned Date
	require.NoError(t, scanned.Scan(v))
	assert.True(t, d.Equal(scanned))

	require.NoError(t, scanned.Scan([]byte("20305")))
	assert.Equal(t, int64(20305), scanned.DayNumber())

	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsZero())

	assert.Error(t, scanned.Scan(true))

	v, err = Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDate_UnmarshalParam(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalParam("05/08/2025"))
	assert.Equal(t, "2025-08-05", d.String())
	assert.NotNil(t, d.OrNil())

	require.NoError(t, d.UnmarshalParam(""))
	assert.True(t, d.IsZero())
	assert.Nil(t, d.OrNil())

	assert.ErrorIs(t, d.UnmarshalParam("yesterday"), ErrInvalidDate)
}
