package progress

import (
	"context"
	"fmt"
	"strings"
	"time"
)

func (pdm *ProgressDisplayManager) displayLoop(ctx context.Context, ticker *time.Ticker, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pdm.displayProgress()
		case <-pdm.triggerDisplay:
			pdm.displayProgress()
		}
	}
}

// displayProgress logs the current line unless it is identical to the previous one.
func (pdm *ProgressDisplayManager) displayProgress() {
	output := pdm.formatProgress(pdm.progress.Info())

	pdm.mutex.Lock()
	defer pdm.mutex.Unlock()
	if output == "" || output == pdm.lastDisplayed {
		return
	}
	pdm.lastDisplayed = output
	pdm.logger.Info().Msg(output)
}

func (pdm *ProgressDisplayManager) formatProgress(info ProgressInfo) string {
	if info.Status == ProgressStatusIdle || info.Total <= 0 {
		return ""
	}

	var builder strings.Builder
	percentage := info.GetPercentage()

	builder.WriteString(fmt.Sprintf("Probing: %s %s %.1f%% (%d/%d)",
		getStatusIcon(info.Status), createProgressBar(percentage, 20), percentage, info.Current, info.Total))
	builder.WriteString(fmt.Sprintf(" | ok:%d filtered:%d failed:%d",
		info.Stats.Survived, info.Stats.Filtered, info.Stats.Failed))

	if pdm.config.ShowETAEstimation && info.EstimatedETA > 0 && info.Status == ProgressStatusRunning {
		builder.WriteString(fmt.Sprintf(" | ETA: %s", formatDuration(info.EstimatedETA)))
	}
	if info.Message != "" {
		builder.WriteString(fmt.Sprintf(" | %s", info.Message))
	}

	return builder.String()
}

func getStatusIcon(status ProgressStatus) string {
	switch status {
	case ProgressStatusRunning:
		return "⏳"
	case ProgressStatusComplete:
		return "✅"
	case ProgressStatusCancelled:
		return "🚫"
	default:
		return "💤"
	}
}

func createProgressBar(percentage float64, width int) string {
	if width <= 0 {
		return ""
	}

	filled := int((percentage / 100.0) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.0fm", d.Minutes())
	default:
		return fmt.Sprintf("%.1fh", d.Hours())
	}
}
