package broker

import (
	"errors"
	"io"
	"testing"

	"github.com/etnz/fxgains"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParser struct{ name string }

func (f fakeParser) Name() string                                      { return f.name }
func (f fakeParser) Parse(r io.Reader) ([]fxgains.Transaction, error) { return nil, nil }

func TestRegistry(t *testing.T) {
	Register(fakeParser{"Fake"})

	p, err := Get(" FAKE ")
	require.NoError(t, err)
	assert.Equal(t, "Fake", p.Name())
	assert.Contains(t, Names(), "fake")

	_, err = Get("unknown")
	assert.ErrorContains(t, err, "unknown broker")

	assert.Panics(t, func() { Register(fakeParser{"fake"}) })
}

func TestParseErrors(t *testing.T) {
	var merr *multierror.Error
	merr = multierror.Append(merr,
		&fxgains.ParseError{Row: 7, Column: "Price", Value: "x", Err: errors.New("bad")},
		&fxgains.ParseError{Row: 3, Column: "TradeDate", Value: "y", Err: errors.New("bad")},
	)
	err := merr.ErrorOrNil()

	list := ParseErrors(err)
	require.Len(t, list, 2)
	assert.Equal(t, 3, list[0].Row)
	assert.Equal(t, 7, list[1].Row)
	assert.True(t, IsRecoverable(err))

	assert.Nil(t, ParseErrors(nil))
	assert.Nil(t, ParseErrors(io.ErrUnexpectedEOF))
	assert.False(t, IsRecoverable(io.ErrUnexpectedEOF))
	assert.True(t, IsRecoverable(nil))

	mixed := multierror.Append(err, io.ErrUnexpectedEOF)
	assert.False(t, IsRecoverable(mixed))
}
