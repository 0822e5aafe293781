package domain

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	stationFieldCount = 8
	fieldDelimiter    = ';'
	escapeChar        = '\\'
	quoteChar         = '"'
	maxLineBytes      = 1 << 20
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseStationSeries parses one station file into a series in file order.
// Blank lines are skipped; every other line yields exactly one record.
// Unparseable numbers become missing values. A row with more than eight
// non-empty fields fails the whole file with ErrMalformedRow. A leading
// byte order mark is ignored.
func ParseStationSeries(name string, data []byte) (StationSeries, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	series := StationSeries{
		Name:    name,
		Records: make([]DailyRecord, 0, bytes.Count(data, []byte{'\n'})+1),
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		fields, err := trimFields(splitFields(text), stationFieldCount)
		if err != nil {
			return StationSeries{}, fmt.Errorf("station %s line %d: %w", name, line, err)
		}

		rec := DailyRecord{
			StationID:     parseValue(fields[0]),
			Year:          parseValue(fields[1]),
			Month:         parseValue(fields[2]),
			Day:           parseValue(fields[3]),
			TMin:          parseValue(fields[4]),
			Temp:          parseValue(fields[5]),
			TMax:          parseValue(fields[6]),
			Precipitation: parseValue(fields[7]),
			Line:          line,
		}
		rec.Date = NormalizeDate(rec.Year, rec.Month, rec.Day)
		series.Records = append(series.Records, rec)
	}
	if err := sc.Err(); err != nil {
		return StationSeries{}, fmt.Errorf("read station %s: %w", name, err)
	}

	return series, nil
}

// skipBOM drops a leading UTF-8 byte order mark from r.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// splitFields splits a line on ';'. A backslash makes the next character
// literal, and spaces or tabs at the start of a field are dropped. A field
// opening with '"' is quoted up to the closing quote; inside it ';' is
// literal and '""' is a single quote.
func splitFields(line string) []string {
	var (
		fields  []string
		b       strings.Builder
		atStart = true
		escaped = false
		quoted  = false
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == escapeChar:
			escaped = true
			atStart = false
		case r == quoteChar && atStart:
			quoted = true
			atStart = false
		case r == quoteChar && quoted:
			if i+1 < len(runes) && runes[i+1] == quoteChar {
				b.WriteRune(quoteChar)
				i++
				continue
			}
			quoted = false
		case quoted:
			b.WriteRune(r)
		case r == fieldDelimiter:
			fields = append(fields, b.String())
			b.Reset()
			atStart = true
		case atStart && (r == ' ' || r == '\t'):
		default:
			b.WriteRune(r)
			atStart = false
		}
	}
	if escaped {
		b.WriteRune(escapeChar)
	}
	return append(fields, b.String())
}

// trimFields pads a row to n fields and drops empty trailing fields beyond
// n (a trailing delimiter). Extra non-empty fields are an error.
func trimFields(fields []string, n int) ([]string, error) {
	for len(fields) > n && strings.TrimSpace(fields[len(fields)-1]) == "" {
		fields = fields[:len(fields)-1]
	}
	if len(fields) > n {
		return nil, fmt.Errorf("%w: %d fields, want %d", ErrMalformedRow, len(fields), n)
	}
	for len(fields) < n {
		fields = append(fields, "")
	}
	return fields, nil
}

// parseValue parses a number, returning a missing value on failure.
// "NaN" is treated as missing.
func parseValue(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return Missing()
	}
	return Some(v)
}

// NormalizeDate builds a calendar date from year, month and day fields by
// formatting them as YYYY-MM-DD and parsing the result. Missing, fractional
// or out-of-range components yield an invalid date.
func NormalizeDate(year, month, day Value) Date {
	y, okY := year.integral()
	m, okM := month.integral()
	d, okD := day.integral()
	if !okY || !okM || !okD || y < 1 || y > 9999 {
		return Date{}
	}

	t, err := time.Parse(DateLayout, fmt.Sprintf("%04d-%02d-%02d", y, m, d))
	if err != nil {
		return Date{}
	}
	return Date{Time: t, Valid: true}
}

// CheckChronological verifies that the valid dates of a series strictly
// increase in file order. Invalid dates are skipped.
func CheckChronological(s StationSeries) error {
	var prev DailyRecord
	seen := false
	for _, rec := range s.Records {
		if !rec.Date.Valid {
			continue
		}
		if seen && !rec.Date.Time.After(prev.Date.Time) {
			return fmt.Errorf("%w: station %s line %d (%s) follows line %d (%s)",
				ErrUnorderedSeries, s.Name, rec.Line, rec.Date, prev.Line, prev.Date)
		}
		prev = rec
		seen = true
	}
	return nil
}

// CountInvalidDates returns the number of records whose date did not parse.
func CountInvalidDates(s StationSeries) int {
	n := 0
	for _, rec := range s.Records {
		if !rec.Date.Valid {
			n++
		}
	}
	return n
}
