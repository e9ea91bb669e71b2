package backend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNothingWatched is returned when none of the requested directories could be watched.
var ErrNothingWatched = errors.New("no directories could be watched")

// Kind distinguishes change notifications from watcher failures.
type Kind int

const (
	KindChange Kind = iota
	KindError
)

// Event reports a burst of filesystem changes or a watcher error. Path is
// the first path seen in the burst and Count the number of raw events.
type Event struct {
	Kind  Kind
	Path  string
	Op    string
	Count int
	Err   error
}

// Watcher observes a set of directories and publishes coalesced change
// events at most once per interval.
type Watcher struct {
	fsw      *fsnotify.Watcher
	interval time.Duration
	watched  int

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWatcher starts watching dirs. Directories that cannot be watched are
// skipped; it fails only when nothing could be watched at all.
func NewWatcher(dirs []string, interval time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	watched := 0
	var firstErr error
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		watched++
	}
	if watched == 0 {
		_ = fsw.Close()
		if firstErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNothingWatched, firstErr)
		}
		return nil, ErrNothingWatched
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		fsw:      fsw,
		interval: interval,
		watched:  watched,
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, 16),
	}

	w.wg.Add(1)
	go w.run()

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w, nil
}

// Events returns a channel of change events. It is closed after Stop.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Watched returns the number of directories being observed.
func (w *Watcher) Watched() int {
	return w.watched
}

// Stop cancels the watcher. Use Wait if a clean drain is required.
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until the watcher goroutine has exited and the events channel
// is closed.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) run() {
	defer w.wg.Done()
	defer w.fsw.Close()

	throttle := newThrottle(w.interval)
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			if !throttle.wait(w.ctx) {
				return
			}
			out := Event{Kind: KindChange, Path: ev.Name, Op: ev.Op.String(), Count: 1 + w.drain()}
			if !w.emit(out) {
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if !w.emit(Event{Kind: KindError, Err: err}) {
				return
			}
		}
	}
}

// drain discards queued raw events so a burst is reported once.
func (w *Watcher) drain() int {
	n := 0
	for {
		select {
		case _, ok := <-w.fsw.Events:
			if !ok {
				return n
			}
			n++
		default:
			return n
		}
	}
}

func (w *Watcher) emit(evt Event) bool {
	select {
	case <-w.ctx.Done():
		return false
	case w.events <- evt:
		return true
	}
}
