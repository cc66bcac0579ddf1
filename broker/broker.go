// Package broker defines the boundary between broker exports and the
// reconciliation engine.
//
// Each broker variant turns its own export format into fxgains.Transaction
// values. Variants register themselves by name and the caller picks exactly
// one per import, there is no cross-broker normalization.
package broker

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/etnz/fxgains"
	"github.com/hashicorp/go-multierror"
)

// Parser reads a broker export.
//
// Parse returns the valid transactions in file order. Rows that cannot be read
// are reported as *fxgains.ParseError collected into a *multierror.Error,
// returned along with the valid rows. Any other error means the export could
// not be read at all, and no transaction is returned.
type Parser interface {
	Name() string
	Parse(r io.Reader) ([]fxgains.Transaction, error)
}

var (
	mu      sync.RWMutex
	parsers = make(map[string]Parser)
)

// Register makes a parser available by its name. It panics if the name is
// already taken.
func Register(p Parser) {
	mu.Lock()
	defer mu.Unlock()
	name := strings.ToLower(p.Name())
	if _, dup := parsers[name]; dup {
		panic("broker: Register called twice for " + name)
	}
	parsers[name] = p
}

// Get returns the parser registered as name.
func Get(name string) (Parser, error) {
	mu.RLock()
	defer mu.RUnlock()
	p, ok := parsers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown broker %q, available brokers are %s", name, strings.Join(names(), ", "))
	}
	return p, nil
}

// Names returns the sorted names of the registered parsers.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	return names()
}

func names() []string {
	list := make([]string, 0, len(parsers))
	for name := range parsers {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

// ParseErrors returns the per row errors carried by err, in row order.
// It returns nil if err is nil or is not made of row errors.
func ParseErrors(err error) []*fxgains.ParseError {
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		var perr *fxgains.ParseError
		if errors.As(err, &perr) {
			return []*fxgains.ParseError{perr}
		}
		return nil
	}
	var list []*fxgains.ParseError
	for _, e := range merr.Errors {
		var perr *fxgains.ParseError
		if errors.As(e, &perr) {
			list = append(list, perr)
		}
	}
	slices.SortStableFunc(list, func(a, b *fxgains.ParseError) int { return a.Row - b.Row })
	return list
}

// IsRecoverable reports whether err only carries per row errors, so that the
// transactions returned with it can still be used.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return len(ParseErrors(err)) == len(merr.Errors)
	}
	var perr *fxgains.ParseError
	return errors.As(err, &perr)
}
