package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"github.com/Byrix/bom-scrapper/internal/core/domain"
)

// progressInterval limits terminal redraws during a download.
const progressInterval = 100 * time.Millisecond

// progressPrinter renders driver download progress. On a terminal it
// redraws a bar in place; otherwise it prints one line per component.
type progressPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	tty     bool
	bar     progress.Model
	redraw  *rate.Sometimes
	current domain.DriverComponent
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{
		w:      w,
		tty:    isTerminal(w),
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(32)),
		redraw: &rate.Sometimes{Interval: progressInterval},
	}
}

// Report matches driving.ProgressFunc.
func (p *progressPrinter) Report(component domain.DriverComponent, written, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if component != p.current {
		p.current = component
		p.redraw = &rate.Sometimes{Interval: progressInterval}
		if !p.tty {
			fmt.Fprintf(p.w, "Downloading %s (%s)\n", component, sizeOf(total))
		}
	}

	finished := total > 0 && written >= total
	if !p.tty {
		if finished {
			fmt.Fprintf(p.w, "Downloaded %s (%s)\n", component, humanize.Bytes(uint64(written)))
		}
		return
	}

	if finished {
		p.draw(component, written, total)
		fmt.Fprintln(p.w)
		return
	}
	p.redraw.Do(func() { p.draw(component, written, total) })
}

func (p *progressPrinter) draw(component domain.DriverComponent, written, total int64) {
	percent := 0.0
	if total > 0 {
		percent = float64(written) / float64(total)
	}
	fmt.Fprintf(p.w, "\r%-13s %s %s / %s ",
		component, p.bar.ViewAs(percent), humanize.Bytes(uint64(written)), sizeOf(total))
}

func sizeOf(total int64) string {
	if total < 0 {
		return "unknown size"
	}
	return humanize.Bytes(uint64(total))
}
