package main

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// maxReadPerCycle caps how many bytes one file may contribute per cycle so
// a single rapidly growing file cannot starve the cursors of the others.
// Leftover bytes are picked up on the next event or sweep.
const maxReadPerCycle = 1 << 20

// FileCursor tracks how much of one log file has been consumed. Offset only
// ever advances past complete lines; it resets to 0 when the file shrinks
// or is replaced.
type FileCursor struct {
	Path   string
	Offset int64
	info   os.FileInfo // identity of the file the offset belongs to
}

// LogTailer watches the configured directories for log files, reads newly
// appended bytes per file, classifies complete lines and appends the
// resulting entries to the store. Files are tailed from byte 0 when first
// seen, so content present before discovery is replayed.
//
// Filesystem notifications drive the fast path; a periodic sweep backs them
// up, retries directories that do not exist yet and picks up anything the
// event stream missed. All cursor state is confined to the tailer's own
// goroutine.
type LogTailer struct {
	store     *CollectorStore
	hub       *Hub // optional live stream fan-out, may be nil
	heartbeat *Heartbeat

	dirs    []string
	ext     string
	poll    time.Duration
	verbose bool

	cursors map[string]*FileCursor
	watcher *fsnotify.Watcher
	watched map[string]bool // directories registered with the watcher

	stop chan struct{}
	done chan struct{}
}

// NewLogTailer creates a tailer writing to store; hub may be nil
func NewLogTailer(cfg Config, store *CollectorStore, hub *Hub, heartbeat *Heartbeat, verbose bool) *LogTailer {
	return &LogTailer{
		store:     store,
		hub:       hub,
		heartbeat: heartbeat,
		dirs:      cfg.Logging.Directories,
		ext:       cfg.Logging.Extension,
		poll:      cfg.PollInterval(),
		verbose:   verbose,
		cursors:   make(map[string]*FileCursor),
		watched:   make(map[string]bool),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the watch loop. When the OS notification facility is not
// available the tailer degrades to pure polling.
func (t *LogTailer) Start() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("Filesystem notifications unavailable, polling only: %v", err)
	} else {
		t.watcher = watcher
	}
	go t.run()
}

// Stop signals the loop to cease and waits for the current cycle to finish
func (t *LogTailer) Stop() {
	close(t.stop)
	<-t.done
}

func (t *LogTailer) run() {
	defer close(t.done)
	if t.watcher != nil {
		defer t.watcher.Close()
	}

	ticker := time.NewTicker(t.poll)
	defer ticker.Stop()

	t.sweep()

	var events chan fsnotify.Event
	var errors chan error
	if t.watcher != nil {
		events = t.watcher.Events
		errors = t.watcher.Errors
	}

	for {
		select {
		case <-t.stop:
			return

		case ev := <-events:
			t.handleEvent(ev)
			t.heartbeat.Mark()

		case err := <-errors:
			log.Printf("Watcher error: %v", err)

		case <-ticker.C:
			t.sweep()
		}
	}
}

// handleEvent reacts to a single filesystem notification
func (t *LogTailer) handleEvent(ev fsnotify.Event) {
	if !strings.HasSuffix(ev.Name, t.ext) {
		return
	}

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		t.processFile(ev.Name)
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if _, ok := t.cursors[ev.Name]; ok {
			delete(t.cursors, ev.Name)
			if t.verbose {
				log.Printf("Log file gone, cursor dropped: %s", ev.Name)
			}
		}
	}
}

// sweep is one full polling cycle: register watches for directories that
// appeared, visit every matching file and drop cursors for files that
// disappeared without a notification.
func (t *LogTailer) sweep() {
	seen := make(map[string]bool)

	for _, dir := range t.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			// Missing directories are retried every sweep, never fatal.
			continue
		}

		if t.watcher != nil && !t.watched[dir] {
			if err := t.watcher.Add(dir); err != nil {
				log.Printf("Cannot watch directory %s: %v", dir, err)
			} else {
				t.watched[dir] = true
				log.Printf("Watching log directory: %s", dir)
			}
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), t.ext) {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			seen[path] = true
			t.processFile(path)
		}
	}

	for path := range t.cursors {
		if !seen[path] {
			if _, err := os.Stat(path); err != nil {
				delete(t.cursors, path)
				if t.verbose {
					log.Printf("Log file gone, cursor dropped: %s", path)
				}
			}
		}
	}

	t.heartbeat.Mark()
}

// processFile reads newly appended bytes of one file from its cursor and
// emits an entry per complete non-empty line. An error on any single file
// drops that file's cursor and never stops the watcher for the others.
func (t *LogTailer) processFile(path string) {
	info, err := os.Stat(path)
	if err != nil {
		if _, ok := t.cursors[path]; ok {
			log.Printf("Cannot stat %s, dropping cursor: %v", path, err)
			delete(t.cursors, path)
		}
		return
	}

	cursor, ok := t.cursors[path]
	if !ok {
		cursor = &FileCursor{Path: path, info: info}
		t.cursors[path] = cursor
	}

	// Truncation or replacement: start over from the top.
	if info.Size() < cursor.Offset || !os.SameFile(cursor.info, info) {
		cursor.Offset = 0
	}
	cursor.info = info

	if info.Size() == cursor.Offset {
		return
	}

	file, err := os.Open(path)
	if err != nil {
		log.Printf("Cannot open %s, dropping cursor: %v", path, err)
		delete(t.cursors, path)
		return
	}
	defer file.Close()

	if _, err := file.Seek(cursor.Offset, io.SeekStart); err != nil {
		log.Printf("Cannot seek %s, dropping cursor: %v", path, err)
		delete(t.cursors, path)
		return
	}

	available := info.Size() - cursor.Offset
	if available > maxReadPerCycle {
		available = maxReadPerCycle
	}

	chunk := make([]byte, available)
	n, err := io.ReadFull(file, chunk)
	if err != nil && err != io.ErrUnexpectedEOF {
		log.Printf("Cannot read %s, dropping cursor: %v", path, err)
		delete(t.cursors, path)
		return
	}
	chunk = chunk[:n]

	// Only complete lines are consumed. A trailing fragment without its
	// newline stays unread until the writer finishes it.
	consumed := bytes.LastIndexByte(chunk, '\n') + 1
	if consumed == 0 {
		return
	}

	for _, raw := range bytes.Split(chunk[:consumed-1], []byte{'\n'}) {
		line := strings.TrimRight(string(raw), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry := LogEntry{
			Timestamp: time.Now(),
			File:      filepath.Base(path),
			FullPath:  path,
			Message:   line,
			Level:     classifyLevel(line),
		}
		t.store.PushLogEntry(entry)
		if t.hub != nil {
			t.hub.BroadcastLog(entry)
		}
		if t.verbose {
			log.Println(entry.String())
		}
	}

	cursor.Offset += int64(consumed)
}

// CursorCount returns how many files currently have an active cursor
func (t *LogTailer) CursorCount() int {
	return len(t.cursors)
}
