// Package lockfile implements the cooperative, file-level advisory lock
// that serializes writers against the knowledge-graph store file. It wraps
// an OS-level flock(2)/LockFileEx primitive (lock_unix.go/lock_windows.go)
// with a JSON side-car describing who holds the lock, so a contender can
// detect and recover from a holder that stopped refreshing (stale-timeout
// recovery) without needing the holder to still be alive.
package lockfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Tunables for stale detection, liveness refresh, and retry.
const (
	StaleTimeout    = 10 * time.Second
	RefreshInterval = 5 * time.Second

	retryMaxAttempts  = 5
	retryInitialWait  = 100 * time.Millisecond
	retryMaxWait      = 2 * time.Second
	retryBackoffMult  = 2.0
)

// ErrLockBusy is returned when a non-blocking lock cannot be acquired
// because another process holds a conflicting lock.
var ErrLockBusy = errors.New("lock busy: held by another process")

// ErrAcquisitionFailed is returned when every retry attempt is exhausted
// while the OS-level lock remains held by another process.
var ErrAcquisitionFailed = errors.New("lock acquisition failed: exhausted retries")

// IsBusy reports whether err indicates the lock is currently held elsewhere.
func IsBusy(err error) bool {
	return errors.Is(err, ErrLockBusy)
}

// Info is the JSON side-car written alongside the OS-level lock, recording
// who holds it and when it was last known to be alive. A contender uses
// RefreshedAt to decide whether the holder is stale.
type Info struct {
	PID         int       `json:"pid"`
	AcquiredAt  time.Time `json:"acquired_at"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

func (i Info) stale(now time.Time) bool {
	return now.Sub(i.RefreshedAt) > StaleTimeout
}

// FileLock is a held lock on path's side-car (path + ".lock"). Release must
// be called exactly once, on every exit path (success or failure of the
// guarded operation).
type FileLock struct {
	path     string
	file     *os.File
	mu       sync.Mutex
	released bool
	done     chan struct{}
	wg       sync.WaitGroup
}

func sidecarPath(storePath string) string {
	return storePath + ".lock"
}

// Acquire takes the cooperative lock on storePath, retrying with exponential
// backoff (100ms initial, factor 2, 2s cap, 5 attempts) while the OS-level
// lock is held by another process. When the side-car shows no refresh within
// StaleTimeout and its PID is no longer running, an attempt makes one extra
// immediate try at the OS-level lock; a lock whose OS-level hold is still in
// place is never taken over. It starts a background
// goroutine that refreshes the side-car every RefreshInterval until Release
// is called.
func Acquire(ctx context.Context, storePath string) (*FileLock, error) {
	lockPath := sidecarPath(storePath)

	var f *os.File
	var lastErr error

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryInitialWait
	policy.MaxInterval = retryMaxWait
	policy.Multiplier = retryBackoffMult
	policy.MaxElapsedTime = 0 // bounded by attempt count below, not elapsed time

	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		var err error
		f, err = tryAcquire(lockPath)
		if err == nil {
			return nil
		}
		lastErr = err
		if !errors.Is(err, ErrLockBusy) {
			return backoff.Permanent(err)
		}
		if attempts >= retryMaxAttempts {
			return backoff.Permanent(ErrAcquisitionFailed)
		}
		return err
	}, backoff.WithContext(policy, ctx))

	if err != nil {
		if errors.Is(err, ErrAcquisitionFailed) {
			return nil, fmt.Errorf("lockfile: acquire %s: %w", storePath, ErrAcquisitionFailed)
		}
		return nil, fmt.Errorf("lockfile: acquire %s: %w", storePath, lastErr)
	}

	l := &FileLock{path: lockPath, file: f, done: make(chan struct{})}
	if err := l.writeInfo(); err != nil {
		_ = l.Release()
		return nil, fmt.Errorf("lockfile: write side-car for %s: %w", storePath, err)
	}
	l.startRefresher()
	return l, nil
}

// tryAcquire attempts the OS-level lock once. If it is busy, it inspects
// the side-car: a holder that has gone stale is treated as recoverable (the
// contender proceeds to retry immediately rather than waiting out the full
// backoff schedule), since stale almost always means the holder's process,
// and therefore its OS-level flock, is already gone.
func tryAcquire(lockPath string) (*os.File, error) {
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := flockExclusiveNonBlocking(f); err == nil {
		return f, nil
	} else if !errors.Is(err, ErrLockBusy) {
		f.Close()
		return nil, err
	}

	info, readErr := readInfo(f)
	if readErr == nil && info.stale(time.Now()) && !isProcessRunning(info.PID) {
		// The previous holder is gone without releasing; the kernel already
		// dropped its flock when its file descriptor closed, but the
		// non-blocking attempt above can still race a slow-to-close peer.
		// One more attempt recovers the common case.
		if err := flockExclusiveNonBlocking(f); err == nil {
			return f, nil
		}
	}

	f.Close()
	return nil, ErrLockBusy
}

func readInfo(f *os.File) (Info, error) {
	if _, err := f.Seek(0, 0); err != nil {
		return Info{}, err
	}
	var info Info
	dec := json.NewDecoder(f)
	if err := dec.Decode(&info); err != nil {
		return Info{}, err
	}
	return info, nil
}

func (l *FileLock) writeInfo() error {
	now := time.Now()
	info := Info{PID: os.Getpid(), AcquiredAt: now, RefreshedAt: now}
	return l.writeInfoLocked(info)
}

func (l *FileLock) writeInfoLocked(info Info) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	if _, err := l.file.Seek(0, 0); err != nil {
		return err
	}
	if err := l.file.Truncate(0); err != nil {
		return err
	}
	_, err = l.file.Write(data)
	return err
}

// startRefresher touches the side-car's RefreshedAt at RefreshInterval,
// the liveness signal other holders use to judge staleness (§4.2).
func (l *FileLock) startRefresher() {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ticker := time.NewTicker(RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-l.done:
				return
			case <-ticker.C:
				l.mu.Lock()
				if !l.released {
					info := Info{PID: os.Getpid(), RefreshedAt: time.Now()}
					if cur, err := readInfo(l.file); err == nil {
						info.AcquiredAt = cur.AcquiredAt
					} else {
						info.AcquiredAt = time.Now()
					}
					_ = l.writeInfoLocked(info)
				}
				l.mu.Unlock()
			}
		}
	}()
}

// Release unlocks and cleans up. It is safe to call more than once and
// must be called on every code path that follows a successful Acquire.
func (l *FileLock) Release() error {
	l.mu.Lock()
	if l.released {
		l.mu.Unlock()
		return nil
	}
	l.released = true
	close(l.done)
	l.mu.Unlock()

	l.wg.Wait()

	err := flockUnlock(l.file)
	closeErr := l.file.Close()
	if err == nil {
		err = closeErr
	}
	_ = os.Remove(l.path)
	return err
}
