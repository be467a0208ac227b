// Copyright © 2025 Nalu contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vcd/loader.go
// Summary: Background load pipeline. A parser goroutine streams value
// changes through a bounded channel to an ingester goroutine that fills the
// waveform store.

package vcd

import (
	"context"
	"io"
	"log"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/framegrace/nalu/waveform"
)

const (
	batchQueue = 1024
	batchSize  = 512
)

// Result is delivered once per successful or failed load.
type Result struct {
	Header   *Header
	Waveform *waveform.Waveform
	Err      error
}

// Handle observes and controls one load.
type Handle struct {
	Path string

	mu         sync.Mutex
	pos        int
	total      int
	onProgress func(pos, total int)

	result chan Result
	cancel context.CancelFunc
}

// Progress returns (bytes consumed, file size).
func (h *Handle) Progress() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pos, h.total
}

func (h *Handle) publish(pos, total int) {
	h.mu.Lock()
	h.pos, h.total = pos, total
	if h.onProgress != nil {
		h.onProgress(pos, total)
	}
	h.mu.Unlock()
}

// Result receives exactly one value unless the load is cancelled.
func (h *Handle) Result() <-chan Result { return h.result }

// Cancel stops both workers. A cancelled load delivers nothing.
func (h *Handle) Cancel() { h.cancel() }

// InitWaveform declares every variable of h in w.
func (h *Header) InitWaveform(w *waveform.Waveform) error {
	for id, v := range h.Idcodes() {
		var err error
		if v.IsReal() {
			err = w.InitReal(id)
		} else {
			err = w.InitVector(id, v.Width)
		}
		if err != nil {
			return errors.Wrapf(err, "declaring %s", v.Name)
		}
	}
	return nil
}

// Load starts loading path in the background.
func Load(ctx context.Context, path string) *Handle {
	return load(ctx, path, nil)
}

func load(ctx context.Context, path string, onProgress func(pos, total int)) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{Path: path, result: make(chan Result, 1), cancel: cancel, onProgress: onProgress}

	var (
		once    sync.Once
		header  *Header
		store   = waveform.New()
		ready   = make(chan struct{})
		batches = make(chan []Entry, batchQueue)
	)
	fail := func(err error) {
		once.Do(func() {
			if ctx.Err() == nil {
				log.Printf("Loader: %s: %v", path, err)
				h.result <- Result{Err: err}
			}
			cancel()
		})
	}

	go func() {
		defer close(batches)
		data, err := os.ReadFile(path)
		if err != nil {
			fail(errors.Wrap(err, "reading waveform"))
			return
		}
		size := len(data)
		p := NewParser(data)
		h.publish(0, size)
		hdr, err := p.ParseHeader()
		if err != nil {
			fail(errors.Wrapf(err, "parsing %s", path))
			return
		}
		if err := hdr.InitWaveform(store); err != nil {
			fail(err)
			return
		}
		header = hdr
		close(ready)

		last := p.Position()
		h.publish(last, size)
		batch := make([]Entry, 0, batchSize)
		send := func() bool {
			if len(batch) == 0 {
				return true
			}
			select {
			case batches <- batch:
				batch = make([]Entry, 0, batchSize)
				return true
			case <-ctx.Done():
				return false
			}
		}
		for {
			e, err := p.Next()
			if err == io.EOF {
				if send() {
					h.publish(size, size)
				}
				return
			}
			if err != nil {
				fail(errors.Wrapf(err, "parsing %s", path))
				return
			}
			batch = append(batch, e)
			if len(batch) == batchSize && !send() {
				return
			}
			if idx := p.Position(); idx < size && (idx-last)*200/size > 0 {
				h.publish(idx, size)
				last = idx
			}
		}
	}()

	go func() {
		select {
		case <-ready:
		case <-ctx.Done():
			return
		}
		for batch := range batches {
			if ctx.Err() != nil {
				return
			}
			for _, e := range batch {
				var err error
				switch e.Kind {
				case EntryTimestamp:
					err = store.InsertTimestamp(e.Timestamp)
				case EntryVector:
					err = store.UpdateVector(e.Idcode, e.Vector)
				case EntryReal:
					err = store.UpdateReal(e.Idcode, e.Real)
				}
				if err != nil {
					fail(errors.Wrap(err, "building waveform"))
					return
				}
			}
		}
		once.Do(func() {
			if ctx.Err() == nil {
				log.Printf("Loader: %s: %d timestamps", path, store.Len())
				h.result <- Result{Header: header, Waveform: store}
			}
			cancel()
		})
	}()
	return h
}
