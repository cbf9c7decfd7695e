package placement

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"bidsmap/internal/faults"
)

// destLock serializes place runs that target the same destination root.
type destLock struct {
	path string
	lock *flock.Flock
}

// LockPath returns the lock file used for destDir under lockDir.
func LockPath(lockDir, destDir string) string {
	abs, err := filepath.Abs(destDir)
	if err != nil {
		abs = destDir
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return filepath.Join(lockDir, "dest-"+hex.EncodeToString(sum[:8])+".lock")
}

func acquireLock(lockDir, destDir string) (*destLock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, faults.Wrap(faults.ErrPath, "placement", "lock", lockDir, err)
	}
	path := LockPath(lockDir, destDir)
	l := &destLock{path: path, lock: flock.New(path)}
	ok, err := l.lock.TryLock()
	if err != nil {
		return nil, faults.Wrap(faults.ErrPath, "placement", "lock", path, err)
	}
	if !ok {
		return nil, faults.Wrap(faults.ErrPath, "placement", "lock",
			fmt.Sprintf("another place run holds %s for %s", path, destDir), nil)
	}
	return l, nil
}

func (l *destLock) release() error {
	if l == nil {
		return nil
	}
	return l.lock.Unlock()
}
