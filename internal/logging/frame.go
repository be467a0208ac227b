package logging

import (
	"log"
	"strings"
	"time"
)

// FrameBudget is the frame duration above which timings are logged.
const FrameBudget = 20 * time.Millisecond

type section struct {
	name string
	at   time.Time
}

// FrameTimestamps records named checkpoints within one frame.
type FrameTimestamps struct {
	start    time.Time
	sections []section
	now      func() time.Time
}

func NewFrameTimestamps() *FrameTimestamps {
	f := &FrameTimestamps{now: time.Now}
	f.start = f.now()
	return f
}

// Mark closes the section that ends now under name.
func (f *FrameTimestamps) Mark(name string) {
	f.sections = append(f.sections, section{name: name, at: f.now()})
}

// Total is the time from creation to the last mark.
func (f *FrameTimestamps) Total() time.Duration {
	if len(f.sections) == 0 {
		return 0
	}
	return f.sections[len(f.sections)-1].at.Sub(f.start)
}

// String lists each section with its duration.
func (f *FrameTimestamps) String() string {
	var sb strings.Builder
	prev := f.start
	for i, s := range f.sections {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(s.name)
		sb.WriteString("=")
		sb.WriteString(s.at.Sub(prev).String())
		prev = s.at
	}
	return sb.String()
}

// LogIfSlow logs the sections when the frame went over budget and reports
// whether it did.
func (f *FrameTimestamps) LogIfSlow() bool {
	total := f.Total()
	if total <= FrameBudget {
		return false
	}
	log.Printf("Frame: %s over budget (%s)", total, f)
	return true
}
