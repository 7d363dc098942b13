package tinydi

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Cleanup is returned by a factory of shape func() (T, Cleanup, error)
// and is called once by (*Context).Close.
type Cleanup func()

func (fn Cleanup) CallWithRecovery(log *slog.Logger, key string) {
	defer func() {
		if rp := recover(); rp != nil {
			log.Error(
				"cleanup failed",
				"key", key,
				"error", fmt.Errorf(recoveredPanicError, rp),
			)
		}
	}()

	fn()
}

type cleanupRecord struct {
	fn  Cleanup
	key string
}

// cleanups are kept in production order and run in reverse,
// so a value is cleaned up before the values it was built from.
type cleanupStack struct {
	records []cleanupRecord
	mu      sync.Mutex
}

func (cs *cleanupStack) push(key string, fn Cleanup) {
	if fn == nil {
		return
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.records = append(cs.records, cleanupRecord{fn: fn, key: key})
}

func (cs *cleanupStack) drain() []cleanupRecord {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	records := cs.records
	cs.records = nil
	slices.Reverse(records)

	return records
}

func (cs *cleanupStack) run(log *slog.Logger) {
	for _, rec := range cs.drain() {
		log.Debug("running cleanup", "key", rec.key)
		rec.fn.CallWithRecovery(log, rec.key)
	}
}
