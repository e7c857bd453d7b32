package urlhandler

import (
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aleister1102/httpeek/internal/common"
)

// TargetSources are the places raw targets can come from. They are combined in
// the order single URL, list file, stdin.
type TargetSources struct {
	URL      string
	ListFile string
	Stdin    io.Reader
}

// TargetManager handles loading targets from the configured sources
type TargetManager struct {
	logger zerolog.Logger
}

// NewTargetManager creates a new TargetManager instance
func NewTargetManager(logger zerolog.Logger) *TargetManager {
	return &TargetManager{
		logger: logger.With().Str("component", "TargetManager").Logger(),
	}
}

// LoadTargets collects raw targets from every configured source.
func (tm *TargetManager) LoadTargets(sources TargetSources) ([]string, error) {
	var targets []string

	if url := strings.TrimSpace(sources.URL); url != "" {
		targets = append(targets, url)
	}

	if sources.ListFile != "" {
		fromFile, err := ReadTargetsFromFile(sources.ListFile, tm.logger)
		if err != nil {
			return nil, common.WrapError(err, "failed to load targets from '"+sources.ListFile+"'")
		}
		targets = append(targets, fromFile...)
	}

	if sources.Stdin != nil {
		fromStdin, err := ReadTargets(sources.Stdin)
		if err != nil {
			return nil, common.WrapError(err, "failed to read targets from stdin")
		}
		targets = append(targets, fromStdin...)
	}

	if len(targets) == 0 {
		return nil, common.ErrNoTargets
	}

	tm.logger.Info().Int("count", len(targets)).Msg("Loaded targets")
	return targets, nil
}
