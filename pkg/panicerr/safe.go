// Package panicerr turns panics in background work into errors, so one
// faulty notifier or job cannot take the process down.
package panicerr

import (
	"context"

	"github.com/sourcegraph/conc/panics"
)

func Safe(fn func() error) func() error {
	return func() error {
		var err error
		if r := panics.Try(func() { err = fn() }); r != nil {
			return r.AsError()
		}
		return err
	}
}

func SafeContext(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		return Safe(func() error { return fn(ctx) })()
	}
}
