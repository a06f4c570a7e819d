package audio

import (
	"context"

	"github.com/jaki95/set-ripper/internal/domain"
)

// Processor cuts a track out of a source recording.
type Processor interface {
	// Command returns the invocation Split would run, without running it.
	Command(sp SplitParams) (Command, error)
	Split(ctx context.Context, sp SplitParams) error
}

type SplitParams struct {
	InputPath  string
	OutputPath string
	Track      domain.Track
	Range      domain.Range
}
