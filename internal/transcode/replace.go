package transcode

import (
	"fmt"
	"os"
)

// rename is swapped out in tests to inject failures mid-protocol.
var rename = os.Rename

// Replace swaps the encoded temp file into the original's place. The
// original is parked under a .backup name first so every step has a
// rollback: if moving the temp file in fails, the backup is restored
// and the caller still has the untouched original. The backup is only
// deleted once the new file is in place; a failed delete leaves a
// stray .backup file but never loses data.
func Replace(originalPath, tempPath string) error {
	info, err := os.Stat(tempPath)
	if err != nil {
		return fmt.Errorf("stat temp output: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("temp output is empty")
	}

	backupPath := originalPath + ".backup"
	if err := rename(originalPath, backupPath); err != nil {
		return fmt.Errorf("backing up original: %w", err)
	}

	if err := rename(tempPath, originalPath); err != nil {
		if rbErr := rename(backupPath, originalPath); rbErr != nil {
			return fmt.Errorf("moving output into place: %w (rollback also failed: %v)", err, rbErr)
		}
		return fmt.Errorf("moving output into place: %w", err)
	}

	// the new file is in place; a stray backup is not worth failing over
	os.Remove(backupPath)
	return nil
}
