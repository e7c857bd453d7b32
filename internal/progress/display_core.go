package progress

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/httpeek/internal/models"
)

// ProgressDisplayConfig configures the periodic progress line.
type ProgressDisplayConfig struct {
	DisplayInterval   time.Duration
	EnableProgress    bool
	ShowETAEstimation bool
}

// DefaultProgressDisplayConfig redraws every three seconds with an ETA.
func DefaultProgressDisplayConfig() *ProgressDisplayConfig {
	return &ProgressDisplayConfig{
		DisplayInterval:   3 * time.Second,
		EnableProgress:    true,
		ShowETAEstimation: true,
	}
}

// ProgressDisplayManager logs a progress line for the running batch.
// Lines go through the logger, which writes to stderr, so stdout stays reserved for results.
type ProgressDisplayManager struct {
	progress       *Progress
	mutex          sync.Mutex
	logger         zerolog.Logger
	displayTicker  *time.Ticker
	isRunning      bool
	cancel         context.CancelFunc
	done           chan struct{}
	lastDisplayed  string
	config         *ProgressDisplayConfig
	triggerDisplay chan struct{}
}

// NewProgressDisplayManager creates a display manager; nil config uses the defaults.
func NewProgressDisplayManager(logger zerolog.Logger, config *ProgressDisplayConfig) *ProgressDisplayManager {
	if config == nil {
		config = DefaultProgressDisplayConfig()
	}
	if config.DisplayInterval <= 0 {
		config.DisplayInterval = 3 * time.Second
	}

	return &ProgressDisplayManager{
		progress:       NewProgress(),
		logger:         logger.With().Str("component", "ProgressDisplay").Logger(),
		config:         config,
		triggerDisplay: make(chan struct{}, 1),
	}
}

// Start launches the display loop. It is a no-op when disabled or already running.
func (pdm *ProgressDisplayManager) Start() {
	pdm.mutex.Lock()
	defer pdm.mutex.Unlock()

	if pdm.isRunning {
		return
	}
	if !pdm.config.EnableProgress {
		pdm.logger.Debug().Msg("Progress display disabled in configuration")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	pdm.cancel = cancel
	pdm.done = make(chan struct{})
	pdm.isRunning = true
	pdm.displayTicker = time.NewTicker(pdm.config.DisplayInterval)

	go pdm.displayLoop(ctx, pdm.displayTicker, pdm.done)
}

// Stop halts the loop, waits for it to exit and prints the final line once.
func (pdm *ProgressDisplayManager) Stop() {
	pdm.mutex.Lock()
	if !pdm.isRunning {
		pdm.mutex.Unlock()
		return
	}
	pdm.isRunning = false
	pdm.cancel()
	pdm.displayTicker.Stop()
	done := pdm.done
	pdm.mutex.Unlock()

	<-done
	pdm.displayProgress()
}

// Begin starts tracking a batch of total targets.
func (pdm *ProgressDisplayManager) Begin(total int) {
	pdm.progress.Begin(int64(total))
	pdm.triggerImmediateDisplay()
}

// Record counts one finished probe. The ticker decides when it is shown.
func (pdm *ProgressDisplayManager) Record(kind models.OutcomeKind) {
	pdm.progress.Record(kind)
}

// Finish marks the batch complete, or cancelled when interrupted.
func (pdm *ProgressDisplayManager) Finish(interrupted bool) {
	if interrupted {
		pdm.progress.SetStatus(ProgressStatusCancelled, "interrupted")
	} else {
		pdm.progress.SetStatus(ProgressStatusComplete, "")
	}
}

// Info returns the current snapshot.
func (pdm *ProgressDisplayManager) Info() ProgressInfo {
	return pdm.progress.Info()
}

func (pdm *ProgressDisplayManager) triggerImmediateDisplay() {
	select {
	case pdm.triggerDisplay <- struct{}{}:
	default:
	}
}
