// Package panicerr turns panics in long-running workers into errors so a
// conc pool can cancel its siblings and report the failure.
package panicerr

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/panics"
)

// Worker wraps fn so that a panic is returned as an error tagged with the
// worker name. Errors returned by fn are tagged the same way; a nil return
// stays nil.
func Worker(name string, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = fn(ctx)
		})
		if r := catcher.Recovered(); r != nil {
			return fmt.Errorf("%s: %w", name, r.AsError())
		}
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}
}
