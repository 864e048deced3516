package period

import (
	"errors"
	"strings"
	"time"
)

// Kind names a time window a report can be computed over.
type Kind string

const (
	KindDay      Kind = "day"
	KindWeek     Kind = "week"
	KindMonth    Kind = "month"
	KindQuarter  Kind = "quarter"
	KindSemester Kind = "semester"
	KindYear     Kind = "year"
	KindCustom   Kind = "custom"
)

var (
	ErrUnknownPeriod      = errors.New("unknown period")
	ErrInvalidCustomRange = errors.New("invalid custom range")
	ErrInvalidTimestamp   = errors.New("invalid date or timestamp")
)

// TimestampLayout is the canonical text form of range boundaries and stored timestamps.
// It sorts lexically in chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000"

// Kinds returns the fixed periods shown on the dashboard, shortest first.
func Kinds() []Kind {
	return []Kind{KindDay, KindWeek, KindMonth, KindQuarter, KindSemester, KindYear}
}

// ParseKind normalises user input. It does not validate; Resolve does.
func ParseKind(s string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(s)))
}

// Label is the French display name of the period.
func (k Kind) Label() string {
	switch k {
	case KindDay:
		return "Aujourd'hui"
	case KindWeek:
		return "Cette semaine"
	case KindMonth:
		return "Ce mois"
	case KindQuarter:
		return "Ce trimestre"
	case KindSemester:
		return "Ce semestre"
	case KindYear:
		return "Cette année"
	case KindCustom:
		return "Période personnalisée"
	}

	return string(k)
}

// Descriptor is the caller-supplied description of a window. Dates are strings
// because they come straight from forms and query parameters.
type Descriptor struct {
	Period        Kind
	ReferenceDate string
	StartDate     string
	EndDate       string
}

// Range is an inclusive [Start, End] interval.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) StartISO() string { return r.Start.Format(TimestampLayout) }
func (r Range) EndISO() string   { return r.End.Format(TimestampLayout) }

// Contains reports whether t falls within the range, boundaries included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}
