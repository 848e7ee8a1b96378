package dataset

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/mgindex/errs"
	"github.com/arloliu/mgindex/format"
	"github.com/arloliu/mgindex/internal/options"
)

type config struct {
	compression format.CompressionType
	logger      *slog.Logger
}

func newConfig() *config {
	return &config{
		compression: format.CompressionZstd,
		logger:      slog.New(slog.DiscardHandler),
	}
}

// Option configures a Writer or a Reader.
type Option = options.Option[*config]

// WithCompression selects the block codec of a Writer. The default is Zstd.
// Readers take the codec from the dataset header and ignore this option.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(c *config) error {
		if !ct.IsValid() {
			return fmt.Errorf("%w: %d", errs.ErrInvalidCompression, ct)
		}
		c.compression = ct

		return nil
	})
}

// WithLogger sets the logger of the Writer or Reader and of its index table.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}
