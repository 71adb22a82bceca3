/*
DESCRIPTION
  recording.go provides naming, listing and disk space checking of
  recording files.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package recording provides naming and listing of the recording files
// kept under a recordings root directory.
package recording

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"
)

// Prefix begins the name of every recording file.
const Prefix = "rec_"

// nameLayout is the time layout of recording file names. Names sort
// chronologically to the minute.
const nameLayout = "20060102_1504"

// SpaceBuffer is the free space, in bytes, below which a recording is not
// started.
const SpaceBuffer = 50000000 // 50MB.

// Path returns the path of a recording started at t under root, with the
// extension ext, e.g. /var/recordings/rec_20240516_1423.avi.
func Path(root, ext string, t time.Time) string {
	return filepath.Join(root, Prefix+t.Format(nameLayout)+"."+ext)
}

// List returns the paths of all files with the extension ext directly under
// root, sorted lexicographically. A missing root has no recordings.
func List(root, ext string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read recordings directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.EqualFold(filepath.Ext(e.Name()), "."+ext) {
			continue
		}
		paths = append(paths, filepath.Join(root, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Prepare creates root if needed and checks that it has at least
// SpaceBuffer bytes available.
func Prepare(root string) error {
	err := os.MkdirAll(root, 0755)
	if err != nil {
		return fmt.Errorf("could not create recordings directory: %w", err)
	}

	var stat syscall.Statfs_t
	err = syscall.Statfs(root, &stat)
	if err != nil {
		return fmt.Errorf("could not read disk space: %w", err)
	}
	avail := stat.Bavail * uint64(stat.Bsize)
	if avail < SpaceBuffer {
		return fmt.Errorf("reached limit of disk space with a buffer of %v bytes: %v available", SpaceBuffer, avail)
	}
	return nil
}
