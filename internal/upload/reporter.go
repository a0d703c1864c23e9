package upload

import (
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"
)

// LineReporter prints one line per finished upload:
//
//	[2/5] photo.jpg (1.2 MB)
type LineReporter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewLineReporter(w io.Writer) *LineReporter {
	return &LineReporter{w: w}
}

func (r *LineReporter) Report(p Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	line := fmt.Sprintf("[%d/%d] %s (%s)", p.Completed, p.Total, p.Name, humanize.Bytes(uint64(max(p.Size, 0))))
	if p.Err != nil {
		line += " failed: " + p.Err.Error()
	}
	fmt.Fprintln(r.w, line)
}
