package main

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/nalu/core"
	"github.com/framegrace/nalu/internal/app"
	"github.com/framegrace/nalu/internal/logging"
)

const tickInterval = 100 * time.Millisecond

// loop drives st until it is done or ctx ends, and returns the exit message.
func loop(ctx context.Context, drv core.ScreenDriver, st *app.State, panics *logging.PanicLogger) string {
	events := make(chan tcell.Event, 32)
	stop := make(chan struct{})
	defer close(stop)
	panics.Go("eventPoll", func() {
		for {
			ev := drv.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-stop:
				return
			}
		}
	})

	w, h := drv.Size()
	buf := core.NewBuffer(w, h)
	st.Resize(w, h)
	var mouse core.MouseTracker
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	dirty := true
	for {
		frame := logging.NewFrameTimestamps()
		if st.Tick() {
			dirty = true
		}
		frame.Mark("tick")
		if msg, done := st.Done(); done {
			return msg
		}
		if dirty {
			st.Render(buf)
			drv.Draw(buf)
			drv.Show()
			dirty = false
			frame.Mark("render")
			frame.LogIfSlow()
		}

		select {
		case <-ctx.Done():
			return ""
		case <-ticker.C:
		case ev, ok := <-events:
			if !ok {
				return ""
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				st.HandleKey(ev)
			case *tcell.EventMouse:
				x, y, kind := mouse.Translate(ev)
				st.HandleMouse(x, y, kind)
			case *tcell.EventResize:
				w, h := drv.Size()
				buf.Resize(w, h)
				st.Resize(w, h)
			}
			dirty = true
		}
	}
}
