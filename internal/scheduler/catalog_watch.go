package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/brightfeed/internal/logger"
	"github.com/MrSnakeDoc/brightfeed/internal/sources/catalog"
)

// CatalogWatcher reloads categories.yaml when it changes on disk. A file that
// fails to parse is logged and the previous catalog stays in service.
type CatalogWatcher struct {
	loader  *catalog.Loader
	holder  *catalog.Holder
	logger  logger.Logger
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewCatalogWatcher watches the directory holding the loader's file, so that
// editors replacing the file through a rename are seen too.
func NewCatalogWatcher(loader *catalog.Loader, holder *catalog.Holder, log logger.Logger) (*CatalogWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(loader.Path())); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(loader.Path()), err)
	}
	return &CatalogWatcher{
		loader:  loader,
		holder:  holder,
		logger:  log,
		watcher: w,
		done:    make(chan struct{}),
	}, nil
}

// Start processes file events until ctx ends or Stop is called
func (cw *CatalogWatcher) Start(ctx context.Context) {
	cw.wg.Add(1)
	go func() {
		defer cw.wg.Done()
		target := filepath.Clean(cw.loader.Path())
		for {
			select {
			case event, ok := <-cw.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				cw.reload()
			case err, ok := <-cw.watcher.Errors:
				if !ok {
					return
				}
				cw.logger.Warn("catalog watcher error", logger.Error(err))
			case <-cw.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop closes the watcher and waits for the event loop
func (cw *CatalogWatcher) Stop() error {
	close(cw.done)
	err := cw.watcher.Close()
	cw.wg.Wait()
	return err
}

func (cw *CatalogWatcher) reload() {
	c, err := cw.loader.Load()
	if err != nil {
		cw.logger.Warn("catalog change ignored, keeping previous catalog",
			logger.String("file", cw.loader.Path()),
			logger.Error(err))
		return
	}
	cw.holder.Set(c)
	cw.logger.Info("catalog reloaded",
		logger.String("file", cw.loader.Path()),
		logger.Int("categories", c.Len()))
}
