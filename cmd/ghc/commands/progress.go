package commands

import (
	"fmt"
	"io"
	"sync"

	"github.com/gosuri/uilive"
)

// progressStep is how many bytes must arrive before an unknown-size
// download redraws its line.
const progressStep = 64 * 1024

// progressLines redraws one status line per transfer in place.
type progressLines struct {
	mutex   sync.Mutex
	writer  *uilive.Writer
	order   []string
	lines   map[string]string
	percent map[string]int64
}

func newProgressLines(out io.Writer) *progressLines {
	writer := uilive.New()
	writer.Out = out

	return &progressLines{
		writer:  writer,
		lines:   make(map[string]string),
		percent: make(map[string]int64),
	}
}

// Update records written/total for label and redraws when the visible
// value changed.
func (p *progressLines) Update(label string, written, total int64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	mark := written / progressStep
	if total > 0 {
		mark = written * 100 / total
	}

	if last, seen := p.percent[label]; seen && last == mark && written != total {
		return
	}

	if _, seen := p.lines[label]; !seen {
		p.order = append(p.order, label)
	}

	p.percent[label] = mark

	if total > 0 {
		p.lines[label] = fmt.Sprintf("%s  %s / %s (%d%%)", label, formatBytes(written), formatBytes(total), mark)
	} else {
		p.lines[label] = fmt.Sprintf("%s  %s", label, formatBytes(written))
	}

	for _, key := range p.order {
		_, _ = fmt.Fprintln(p.writer, p.lines[key])
	}

	_ = p.writer.Flush()
}

// Func returns a download callback bound to label.
func (p *progressLines) Func(label string) func(written, total int64) {
	return func(written, total int64) {
		p.Update(label, written, total)
	}
}
