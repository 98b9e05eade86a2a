// Package watcher polls a fixed set of files and reports changes once they
// settle.
package watcher

import (
	"context"
	"os"
	"sort"
	"time"
)

// Op is the kind of change observed on a file.
type Op string

const (
	OpCreate Op = "create"
	OpWrite  Op = "write"
	OpRemove Op = "remove"
)

// Event represents a file change event.
type Event struct {
	Path string
	Op   Op
}

// DefaultPollInterval is the default polling interval for file change detection.
const DefaultPollInterval = 500 * time.Millisecond

// Watcher polls files for changes. Changes are delivered in one batch
// after no further change was seen for the debounce period.
type Watcher struct {
	paths        []string
	debounce     time.Duration
	pollInterval time.Duration
	onChange     func(events []Event)
}

// New creates a watcher over paths. Missing paths are watched for
// creation.
func New(paths []string, debounce time.Duration, onChange func(events []Event)) *Watcher {
	return &Watcher{
		paths:        paths,
		debounce:     debounce,
		pollInterval: DefaultPollInterval,
		onChange:     onChange,
	}
}

// SetPollInterval sets the polling interval for file change detection.
func (w *Watcher) SetPollInterval(d time.Duration) {
	w.pollInterval = d
}

// Watch polls until ctx is done. onChange runs on the calling goroutine,
// so a slow handler delays the next poll rather than overlapping it.
func (w *Watcher) Watch(ctx context.Context) error {
	snapshot := w.snapshot()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	var (
		pending    []Event
		lastChange time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			next := w.snapshot()
			if events := diff(snapshot, next); len(events) > 0 {
				pending = merge(pending, events)
				lastChange = now
			}
			snapshot = next
			if len(pending) > 0 && now.Sub(lastChange) >= w.debounce {
				batch := pending
				pending = nil
				w.onChange(batch)
			}
		}
	}
}

type fileInfo struct {
	modTime time.Time
	size    int64
}

func (w *Watcher) snapshot() map[string]fileInfo {
	snap := make(map[string]fileInfo, len(w.paths))
	for _, p := range w.paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		snap[p] = fileInfo{modTime: info.ModTime(), size: info.Size()}
	}
	return snap
}

// diff lists the changes between two snapshots, sorted by path.
func diff(old, new map[string]fileInfo) []Event {
	var events []Event
	for path, newInfo := range new {
		if oldInfo, ok := old[path]; ok {
			if !newInfo.modTime.Equal(oldInfo.modTime) || newInfo.size != oldInfo.size {
				events = append(events, Event{Path: path, Op: OpWrite})
			}
		} else {
			events = append(events, Event{Path: path, Op: OpCreate})
		}
	}
	for path := range old {
		if _, ok := new[path]; !ok {
			events = append(events, Event{Path: path, Op: OpRemove})
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
	return events
}

// merge folds events into pending, keeping the latest op per path.
func merge(pending, events []Event) []Event {
	for _, e := range events {
		replaced := false
		for i := range pending {
			if pending[i].Path == e.Path {
				pending[i].Op = e.Op
				replaced = true
				break
			}
		}
		if !replaced {
			pending = append(pending, e)
		}
	}
	return pending
}
