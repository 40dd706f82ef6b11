package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	progressBar   = "█"
	progressEmpty = "░"
	barWidth      = 20
)

// ProgressDisplay renders a single-line page progress bar during a fetch.
// The total is an estimate and may grow between updates; it never shrinks,
// so the bar only ever moves forward or stretches.
type ProgressDisplay struct {
	mu        sync.Mutex
	shortcode string
	page      int
	total     int
	comments  int
	startTime time.Time
	enabled   bool
}

// NewProgressDisplay creates a progress display for one post. A disabled
// display swallows all updates, for quiet or non-interactive runs.
func NewProgressDisplay(shortcode string, enabled bool) *ProgressDisplay {
	return &ProgressDisplay{
		shortcode: shortcode,
		enabled:   enabled,
	}
}

// Start begins the display with the initial page estimate
func (p *ProgressDisplay) Start(totalPages int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = totalPages
	p.startTime = time.Now()
	p.render()
}

// PageFetched advances the bar by one page
func (p *ProgressDisplay) PageFetched(page, totalPages, comments int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.page = page
	if totalPages > p.total {
		p.total = totalPages
	}
	p.comments = comments
	p.render()
}

// Finish completes the bar and prints the final count
func (p *ProgressDisplay) Finish(totalComments int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled {
		return
	}

	p.page = p.total
	p.comments = totalComments
	p.render()

	elapsed := time.Since(p.startTime).Round(time.Second)
	fmt.Printf("\n%s %d comments in %s\n",
		Green("[DONE]"), totalComments, elapsed)
}

func (p *ProgressDisplay) render() {
	if !p.enabled {
		return
	}

	total := p.total
	if total < 1 {
		total = 1
	}
	filled := p.page * barWidth / total
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat(progressBar, filled) +
		strings.Repeat(progressEmpty, barWidth-filled)

	fmt.Printf("\r%s [%s] page %d/%d • %d comments",
		Cyan(p.shortcode), bar, p.page, total, p.comments)
}
