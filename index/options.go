package index

import (
	"log/slog"

	"github.com/arloliu/mgindex/internal/options"
)

// Option configures a Table.
type Option = options.Option[*Table]

// WithLogger sets the logger receiving duplicate offset and consistency
// reports. Tables log nothing by default.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	})
}
