package index

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/arloliu/mgindex/errs"
)

// Verify checks every offset tree: the AVL invariant must hold and each tree
// must still hold every value inserted into it. Problems are logged at warn
// level and returned together.
func (t *Table) Verify() error {
	var problems []error

	for ci, trees := range t.trees {
		for d, tr := range trees {
			if _, err := tr.Check(); err != nil {
				t.logger.Warn("inconsistent offset tree", slog.Int("class", ci), slog.Int("descriptor", d), slog.Any("error", err))
				problems = append(problems, fmt.Errorf("class %d descriptor %d: %w", ci, d, err))

				continue
			}
			if got, want := tr.Count(), t.inserted[ci][d]; got != want {
				t.logger.Warn("offset tree lost values",
					slog.Int("class", ci), slog.Int("descriptor", d), slog.Int("count", got), slog.Int("inserted", want))
				problems = append(problems, fmt.Errorf("%w: class %d descriptor %d holds %d of %d values",
					errs.ErrLostOffsets, ci, d, got, want))
			}
		}
	}

	return errors.Join(problems...)
}
