// Package period defines the calendar partition used by the ledger: a period
// identifier (year and month), the data buckets a period holds, and the
// lifecycle states a period moves through.
package period

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidMonth is returned when a month falls outside 1..12.
var ErrInvalidMonth = errors.New("month must be between 1 and 12")

// ErrInvalidID is returned when a string is not a YYYY_MM period identifier.
var ErrInvalidID = errors.New("period identifier must have the form YYYY_MM")

// ID identifies a calendar month. The zero value is not a valid period.
// IDs are comparable with == and ordered by Compare.
type ID struct {
	year  int
	month time.Month
}

// New returns the period for the given year and month.
func New(year int, month time.Month) (ID, error) {
	if month < time.January || month > time.December {
		return ID{}, fmt.Errorf("%w: got %d", ErrInvalidMonth, month)
	}
	if year < 1 || year > 9999 {
		return ID{}, fmt.Errorf("year out of range: %d", year)
	}
	return ID{year: year, month: month}, nil
}

// MustNew is like New but panics on invalid input. Intended for tests and constants.
func MustNew(year int, month time.Month) ID {
	id, err := New(year, month)
	if err != nil {
		panic(err)
	}
	return id
}

// FromTime returns the period containing t, in t's location.
func FromTime(t time.Time) ID {
	return ID{year: t.Year(), month: t.Month()}
}

// Parse parses a "YYYY_MM" identifier.
func Parse(s string) (ID, error) {
	y, m, ok := strings.Cut(strings.TrimSpace(s), "_")
	if !ok || len(y) != 4 || len(m) != 2 {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	month, err := strconv.Atoi(m)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return New(year, time.Month(month))
}

// MustParse is like Parse but panics on invalid input.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (p ID) Year() int { return p.year }

func (p ID) Month() time.Month { return p.month }

// IsZero reports whether p is the zero (invalid) period.
func (p ID) IsZero() bool { return p.year == 0 && p.month == 0 }

// String returns the zero-padded "YYYY_MM" form.
func (p ID) String() string {
	if p.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d_%02d", p.year, int(p.month))
}

// ordinal maps p onto a monotonic month counter.
func (p ID) ordinal() int { return p.year*12 + int(p.month) - 1 }

func fromOrdinal(n int) ID {
	return ID{year: n / 12, month: time.Month(n%12 + 1)}
}

// Next returns the following calendar month, rolling December into January.
func (p ID) Next() ID { return fromOrdinal(p.ordinal() + 1) }

// Previous returns the preceding calendar month, rolling January into December.
func (p ID) Previous() ID { return fromOrdinal(p.ordinal() - 1) }

// AddMonths moves p by n months (n may be negative).
func (p ID) AddMonths(n int) ID { return fromOrdinal(p.ordinal() + n) }

// MonthsUntil returns how many months q lies after p (negative when before).
func (p ID) MonthsUntil(q ID) int { return q.ordinal() - p.ordinal() }

// Compare returns -1, 0 or +1 following calendar order.
func (p ID) Compare(q ID) int {
	switch a, b := p.ordinal(), q.ordinal(); {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (p ID) Before(q ID) bool { return p.Compare(q) < 0 }

func (p ID) After(q ID) bool { return p.Compare(q) > 0 }

// Start returns the first instant of the period in loc.
func (p ID) Start(loc *time.Location) time.Time {
	return time.Date(p.year, p.month, 1, 0, 0, 0, 0, loc)
}

// DisplayName returns a human label such as "January 2025".
func (p ID) DisplayName() string {
	return fmt.Sprintf("%s %d", p.month, p.year)
}

// MarshalText implements encoding.TextMarshaler so IDs can be map keys in JSON.
func (p ID) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *ID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*p = ID{}
		return nil
	}
	id, err := Parse(string(b))
	if err != nil {
		return err
	}
	*p = id
	return nil
}

var _ json.Marshaler = ID{}
var _ json.Unmarshaler = (*ID)(nil)

func (p ID) MarshalJSON() ([]byte, error) {
	if p.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(p.String())
}

func (p *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = ID{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return p.UnmarshalText([]byte(s))
}

// SortDescending orders ids most recent first, in place.
func SortDescending(ids []ID) {
	slices.SortFunc(ids, func(a, b ID) int { return b.Compare(a) })
}
