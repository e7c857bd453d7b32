package progress

import (
	"sync"
	"time"

	"github.com/aleister1102/httpeek/internal/models"
)

// Progress tracks a single probing batch.
type Progress struct {
	mu   sync.RWMutex
	info ProgressInfo
}

// NewProgress creates an idle tracker.
func NewProgress() *Progress {
	return &Progress{
		info: ProgressInfo{Status: ProgressStatusIdle},
	}
}

// Info returns a copy of the current snapshot.
func (p *Progress) Info() ProgressInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.info
}

// Begin resets the tracker for a batch of total targets.
func (p *Progress) Begin(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	p.info = ProgressInfo{
		Status:         ProgressStatusRunning,
		Total:          total,
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Record counts one finished probe.
func (p *Progress) Record(kind models.OutcomeKind) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch kind {
	case models.OutcomeSurvived:
		p.info.Stats.Survived++
	case models.OutcomeFiltered:
		p.info.Stats.Filtered++
	default:
		p.info.Stats.Failed++
	}
	p.info.Current++
	p.info.LastUpdateTime = time.Now()
	p.info.UpdateETA()
}

// SetStatus sets the batch status and message.
func (p *Progress) SetStatus(status ProgressStatus, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.info.Status = status
	p.info.Message = message
	p.info.LastUpdateTime = time.Now()
	p.info.UpdateETA()
}
