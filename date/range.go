package date

import (
	"fmt"
	"iter"
	"time"
)

// Range represents a range of dates, both boundaries included.
type Range struct{ From, To Date }

// Year returns the calendar year range, i.e. a tax year.
func Year(y int) Range {
	return Range{From: New(y, time.January, 1), To: New(y, time.December, 31)}
}

// IsZero reports whether the range is unset.
func (r Range) IsZero() bool { return r.From.IsZero() && r.To.IsZero() }

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return (!date.Before(r.From) && !date.After(r.To)) }

// Days iterates over every day of the range in chronological order.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// String returns the year for calendar years, and "from_to" otherwise.
func (r Range) String() string {
	if r == Year(r.From.Year()) {
		return r.From.Format("2006")
	}
	return fmt.Sprintf("%s_%s", r.From, r.To)
}
