package output

import (
	"context"

	"github.com/crimson-sun/vecforest/internal/model"
)

// Output defines the interface for experiment result destinations.
type Output interface {
	Write(ctx context.Context, result model.ExperimentResult) error
	Close() error
}
