package ui

import (
	"fmt"
	"sync"
	"time"
)

// ProgressDisplay shows a single updating status line while a crawl runs
type ProgressDisplay struct {
	mu        sync.Mutex
	uid       string
	pages     int
	lastPage  int
	records   int
	skipped   int
	startTime time.Time
	isDebug   bool
}

// NewProgressDisplay creates a new progress display
func NewProgressDisplay(uid string, debug bool) *ProgressDisplay {
	return &ProgressDisplay{
		uid:       uid,
		startTime: time.Now(),
		isDebug:   debug,
	}
}

// PageDone records one extracted page
func (p *ProgressDisplay) PageDone(page, records, skipped int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pages++
	p.lastPage = page
	p.records += records
	p.skipped += skipped

	if IsQuiet() {
		return
	}
	if p.isDebug {
		printf("%s page %d: %d records, %d skipped\n", Magenta("[PAGE]"), page, records, skipped)
		return
	}
	p.printProgress()
}

func (p *ProgressDisplay) printProgress() {
	line := fmt.Sprintf("%s @%s page %d | %d records",
		Green("[CRAWLING]"),
		p.uid,
		p.lastPage,
		p.records,
	)
	if p.skipped > 0 {
		line += fmt.Sprintf(" | %s", Yellow(fmt.Sprintf("%d skipped", p.skipped)))
	}
	if rate := p.rate(); rate > 0 {
		line += Dim(fmt.Sprintf(" | %.1f records/min", rate))
	}
	printf("\r%s", line)
}

// Complete ends the status line
func (p *ProgressDisplay) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if IsQuiet() || p.pages == 0 {
		return
	}
	if !p.isDebug {
		printf("\n")
	}
	printf("  %s %d pages in %s\n", Dim("•"), p.pages, formatDuration(time.Since(p.startTime)))
}

// Totals returns pages, records and skipped items seen so far
func (p *ProgressDisplay) Totals() (pages, records, skipped int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pages, p.records, p.skipped
}

func (p *ProgressDisplay) rate() float64 {
	elapsed := time.Since(p.startTime).Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(p.records) / elapsed
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
