package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watch invalidates cached templates when their files change on disk. It
// blocks until ctx is cancelled and requires WithDir. ready, when non-nil, is
// closed once the directory is being watched.
func (c *Catalog) Watch(ctx context.Context, ready chan<- struct{}) error {
	if c.dir == "" {
		return errors.New("catalog: watch requires a template directory")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog: watch: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(c.dir); err != nil {
		return fmt.Errorf("catalog: watch %s: %w", c.dir, err)
	}
	c.logger.Info("watching templates", "dir", c.dir)
	if ready != nil {
		close(ready)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			key, ok := ParseFilename(event.Name)
			if !ok {
				continue
			}
			c.Invalidate(key)
			select {
			case c.changes <- key:
			default:
			}
			c.logger.Info("template changed", "key", key.String(), "op", event.Op.String())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("template watcher error", "error", err)
		}
	}
}
