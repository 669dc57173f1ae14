package sampling

import (
	"log/slog"

	"github.com/born-ml/reparam/internal/tensor"
)

// Config configures an Op.
type Config struct {
	// DType of the sample tensor (Float32 or Float64). Noise is always float32.
	DType tensor.DataType

	// Logger receives debug records for each forward and backward dispatch.
	// Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns float32 samples and the default logger.
func DefaultConfig() Config {
	return Config{
		DType:  tensor.Float32,
		Logger: slog.Default(),
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
