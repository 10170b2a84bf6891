package research

// ProgressTotal is the fixed denominator for progress notifications.
const ProgressTotal = 100

// ProgressSink receives advisory progress updates. Implementations must not
// block for long; the cascade calls them inline.
type ProgressSink interface {
	Progress(completed, total int, message string)
}

// ProgressFunc adapts a function into a ProgressSink.
type ProgressFunc func(completed, total int, message string)

// Progress implements ProgressSink.
func (f ProgressFunc) Progress(completed, total int, message string) { f(completed, total, message) }

type nopProgress struct{}

func (nopProgress) Progress(int, int, string) {}

// Progress milestones.
const (
	progressStart       = 0
	progressProbeBase   = 10
	progressProbeSpan   = 80
	progressAggregating = 90
	progressDone        = ProgressTotal
)

// probeMilestone returns the progress value after done of total sources.
func probeMilestone(done, total int) int {
	if total <= 0 {
		return progressProbeBase + progressProbeSpan
	}
	return progressProbeBase + progressProbeSpan*done/total
}
