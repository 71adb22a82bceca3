/*
DESCRIPTION
  file.go provides loading of camcorder variables from a JSON file and
  watching of that file for changes.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ausocean/utils/logging"
	"github.com/fsnotify/fsnotify"
)

// Load reads a JSON object of variable names to string values from path,
// e.g. {"RecordingRoot": "/var/recordings", "Buttons": "0:next,3:select"}.
func Load(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	vars := make(map[string]string)
	err = json.Unmarshal(data, &vars)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return vars, nil
}

// Watch reloads the variables at path whenever the file is written or
// replaced, sending them to dst. The parent directory is watched so that
// editors replacing the file are noticed. Watch returns when ctx is done.
func Watch(ctx context.Context, path string, l logging.Logger, dst chan<- map[string]string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create watcher: %w", err)
	}
	defer w.Close()

	err = w.Add(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("could not watch config directory: %w", err)
	}

	name := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			vars, err := Load(path)
			if err != nil {
				l.Warning("could not reload config", "path", path, "error", err.Error())
				continue
			}
			l.Info("config file changed", "path", path)
			select {
			case dst <- vars:
			case <-ctx.Done():
				return nil
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.Error("config watcher error", "error", err.Error())
		}
	}
}
