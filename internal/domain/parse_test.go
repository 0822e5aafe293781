package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStationSeries(t *testing.T) {
	t.Run("full row", func(t *testing.T) {
		s, err := ParseStationSeries(testStation, []byte("22854;2017;4;12;3.1;9.8;15.2;0\n"))
		require.NoError(t, err)
		require.Len(t, s.Records, 1)

		rec := s.Records[0]
		assert.Equal(t, testStation, s.Name)
		assert.Equal(t, Some(22854), rec.StationID)
		assert.Equal(t, Some(3.1), rec.TMin)
		assert.Equal(t, Some(9.8), rec.Temp)
		assert.Equal(t, Some(15.2), rec.TMax)
		assert.Equal(t, Some(0), rec.Precipitation)
		assert.Equal(t, Date{Time: day(2017, time.April, 12), Valid: true}, rec.Date)
		assert.Equal(t, 1, rec.Line)
	})

	t.Run("whitespace after delimiters", func(t *testing.T) {
		s, err := ParseStationSeries(testStation, []byte("22854; 2017;\t4;  12; 3.1; 9.8; 15.2; 0"))
		require.NoError(t, err)
		require.Len(t, s.Records, 1)
		assert.Equal(t, Some(9.8), s.Records[0].Temp)
		assert.True(t, s.Records[0].Date.Valid)
	})

	t.Run("missing and non-numeric fields", func(t *testing.T) {
		s, err := ParseStationSeries(testStation, []byte("22854;2017;4;12;n/a;;15.2;NaN"))
		require.NoError(t, err)
		rec := s.Records[0]
		assert.False(t, rec.TMin.Valid)
		assert.False(t, rec.Temp.Valid)
		assert.False(t, rec.Precipitation.Valid)
		assert.Equal(t, Some(15.2), rec.TMax)
	})

	t.Run("short row pads missing fields", func(t *testing.T) {
		s, err := ParseStationSeries(testStation, []byte("22854;2017;4;12"))
		require.NoError(t, err)
		rec := s.Records[0]
		assert.True(t, rec.Date.Valid)
		assert.False(t, rec.Temp.Valid)
		assert.False(t, rec.Precipitation.Valid)
	})

	t.Run("escaped delimiter stays in field", func(t *testing.T) {
		s, err := ParseStationSeries(testStation, []byte(`22854;2017;4;12;3\;1;9.8;15.2;0`))
		require.NoError(t, err)
		rec := s.Records[0]
		assert.False(t, rec.TMin.Valid, "3;1 is not a number")
		assert.Equal(t, Some(9.8), rec.Temp)
		assert.Equal(t, Some(0), rec.Precipitation)
	})

	t.Run("quoted fields", func(t *testing.T) {
		s, err := ParseStationSeries(testStation, []byte(`"22854";2017;4;12;"3;1";"12";15.2;""`))
		require.NoError(t, err)
		rec := s.Records[0]
		assert.Equal(t, Some(22854), rec.StationID)
		assert.False(t, rec.TMin.Valid, "quoted 3;1 stays one field")
		assert.Equal(t, Some(12), rec.Temp)
		assert.Equal(t, Some(15.2), rec.TMax)
		assert.False(t, rec.Precipitation.Valid)
	})

	t.Run("leading byte order mark ignored", func(t *testing.T) {
		s, err := ParseStationSeries(testStation, []byte("\uFEFF22854;2017;4;12;3.1;9.8;15.2;0\n"))
		require.NoError(t, err)
		require.Len(t, s.Records, 1)
		assert.Equal(t, Some(22854), s.Records[0].StationID)
		assert.True(t, s.Records[0].Date.Valid)
	})

	t.Run("trailing delimiter tolerated", func(t *testing.T) {
		s, err := ParseStationSeries(testStation, []byte("22854;2017;4;12;3.1;9.8;15.2;0;\r\n"))
		require.NoError(t, err)
		assert.Equal(t, Some(0), s.Records[0].Precipitation)
	})

	t.Run("extra fields rejected", func(t *testing.T) {
		_, err := ParseStationSeries(testStation, []byte("22854;2017;4;12\n22854;2017;4;13;3.1;9.8;15.2;0;7"))
		require.ErrorIs(t, err, ErrMalformedRow)
		assert.Contains(t, err.Error(), "line 2")
		assert.Contains(t, err.Error(), testStation)
	})

	t.Run("blank lines skipped, other rows preserved", func(t *testing.T) {
		data := "22854;2017;4;12;1;2;3;0\n\n   \n22854;2017;2;30;1;2;3;0\nbad row\n"
		s, err := ParseStationSeries(testStation, []byte(data))
		require.NoError(t, err)
		require.Len(t, s.Records, 3)
		assert.False(t, s.Records[1].Date.Valid, "Feb 30 is not a date")
		assert.False(t, s.Records[2].Date.Valid)
		assert.Equal(t, 4, s.Records[1].Line)
		assert.Equal(t, 2, CountInvalidDates(s))
	})

	t.Run("empty file", func(t *testing.T) {
		s, err := ParseStationSeries(testStation, nil)
		require.NoError(t, err)
		assert.Empty(t, s.Records)
	})
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name             string
		year, month, day Value
		want             Date
	}{
		{"valid", Some(2017), Some(4), Some(12), Date{Time: day(2017, time.April, 12), Valid: true}},
		{"leap day", Some(2020), Some(2), Some(29), Date{Time: day(2020, time.February, 29), Valid: true}},
		{"non-leap Feb 29", Some(2021), Some(2), Some(29), Date{}},
		{"month 13", Some(2021), Some(13), Some(1), Date{}},
		{"day 0", Some(2021), Some(1), Some(0), Date{}},
		{"negative month", Some(2021), Some(-1), Some(1), Date{}},
		{"fractional day", Some(2021), Some(1), Some(1.5), Date{}},
		{"integral float", Some(2021.0), Some(1.0), Some(31.0), Date{Time: day(2021, time.January, 31), Valid: true}},
		{"missing year", Missing(), Some(1), Some(1), Date{}},
		{"year zero", Some(0), Some(1), Some(1), Date{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDate(tt.year, tt.month, tt.day))
		})
	}
}

func TestDate_InvalidExtraction(t *testing.T) {
	var d Date
	_, ok := d.Year()
	assert.False(t, ok)
	_, ok = d.Month()
	assert.False(t, ok)
	assert.Equal(t, "invalid", d.String())
}

func TestCheckChronological(t *testing.T) {
	t.Run("ordered", func(t *testing.T) {
		s := makeSeries(testStation, day(2017, time.December, 30), 1, 2, 3, 4)
		assert.NoError(t, CheckChronological(s))
	})

	t.Run("invalid dates are skipped", func(t *testing.T) {
		s := makeSeries(testStation, day(2017, time.January, 1), 1, 2, 3)
		s.Records[1].Date = Date{}
		assert.NoError(t, CheckChronological(s))
	})

	t.Run("repeated day", func(t *testing.T) {
		s := makeSeries(testStation, day(2017, time.January, 1), 1, 2, 3)
		s.Records[2].Date = s.Records[1].Date
		err := CheckChronological(s)
		require.ErrorIs(t, err, ErrUnorderedSeries)
		assert.Contains(t, err.Error(), "line 3")
	})

	t.Run("backwards", func(t *testing.T) {
		s := makeSeries(testStation, day(2017, time.January, 1), 1, 2, 3)
		s.Records[0], s.Records[2] = s.Records[2], s.Records[0]
		assert.ErrorIs(t, CheckChronological(s), ErrUnorderedSeries)
	})
}
