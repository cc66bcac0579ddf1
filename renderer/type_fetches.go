package renderer

import (
	"time"

	"github.com/etnz/fxgains/ratestore"
)

// Fetches is the printable list of the rate batches in store.
type Fetches struct {
	Lines []FetchLine
}

// FetchLine is one stored batch.
type FetchLine struct {
	ID       string
	Currency string
	Created  string
	Count    int
}

// NewFetches builds the view of fetches.
func NewFetches(fetches []ratestore.Fetch) *Fetches {
	f := &Fetches{}
	for _, x := range fetches {
		f.Lines = append(f.Lines, FetchLine{
			ID:       x.ID,
			Currency: x.Currency,
			Created:  x.Created.Format(time.DateTime),
			Count:    x.Count,
		})
	}
	return f
}
