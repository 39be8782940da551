// Package filesystem watches a directory for learning material to ingest.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/kensho/internal/logger"
)

// DefaultSettle is how long a file must stay quiet before it is reported.
const DefaultSettle = 500 * time.Millisecond

// FileKind classifies a watched file by how it is ingested.
type FileKind int

// File kinds.
const (
	KindText FileKind = iota + 1
	KindPDF
	KindAudio
)

// String returns the kind name.
func (k FileKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPDF:
		return "pdf"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

var extensions = map[string]FileKind{
	".txt":  KindText,
	".md":   KindText,
	".pdf":  KindPDF,
	".mp3":  KindAudio,
	".m4a":  KindAudio,
	".wav":  KindAudio,
	".webm": KindAudio,
}

// KindOf reports how the file at path would be ingested.
func KindOf(path string) (FileKind, bool) {
	kind, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return kind, ok
}

// Change is a settled file ready for ingestion.
type Change struct {
	Path string
	Kind FileKind
}

// Watcher reports new or rewritten files in a single directory.
type Watcher struct {
	root   string
	settle time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates a watcher for root.
func New(root string) *Watcher {
	return &Watcher{root: root, settle: DefaultSettle}
}

// SetSettle overrides the quiet period.
func (w *Watcher) SetSettle(d time.Duration) {
	w.settle = d
}

// Watch starts watching. The channel closes when ctx ends or Close is called.
func (w *Watcher) Watch(ctx context.Context) (<-chan Change, error) {
	info, err := os.Stat(w.root)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", w.root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory", w.root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(w.root); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.root, err)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		fw.Close()
		return nil, errors.New("watcher closed")
	}
	w.watcher = fw
	w.mu.Unlock()

	out := make(chan Change)
	go w.loop(ctx, fw, out)
	return out, nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, out chan<- Change) {
	defer close(out)
	defer fw.Close()

	ready := make(chan Change)
	pending := make(map[string]*time.Timer)
	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			change := w.handleFsEvent(event)
			if change == nil {
				continue
			}
			if t, ok := pending[change.Path]; ok {
				t.Reset(w.settle)
				continue
			}
			c := *change
			pending[c.Path] = time.AfterFunc(w.settle, func() {
				select {
				case ready <- c:
				case <-ctx.Done():
				}
			})

		case c := <-ready:
			delete(pending, c.Path)
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("watch %s: %v", w.root, err)
		}
	}
}

// handleFsEvent returns the change an event implies, or nil when it should
// be ignored.
func (w *Watcher) handleFsEvent(event fsnotify.Event) *Change {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return nil
	}
	if isHidden(event.Name) {
		return nil
	}
	kind, ok := KindOf(event.Name)
	if !ok {
		return nil
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return nil
	}
	return &Change{Path: event.Name, Kind: kind}
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	w.watcher = nil
	return err
}

// isHidden reports dotfiles and editor swap files.
func isHidden(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~")
}
