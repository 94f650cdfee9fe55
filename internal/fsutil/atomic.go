// Package fsutil holds small filesystem helpers shared by the exporters.
package fsutil

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio/v2"
)

// FileMode is the permission exported level files are created with, before
// the process umask.
const FileMode os.FileMode = 0o644

// WriteAtomic streams into a pending sibling file and renames it over path.
// On any error the pending file is removed and path is left untouched.
func WriteAtomic(path string, write func(w io.Writer) error) error {
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(FileMode))
	if err != nil {
		return fmt.Errorf("creating pending file for %s: %w", path, err)
	}
	defer pf.Cleanup()

	bw := bufio.NewWriter(pf)
	if err := write(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
