package main

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"golang.org/x/tools/go/packages"
)

// settle is how long the watcher waits for changes to stop before generating.
const settle = 200 * time.Millisecond

// watch generates again each time a Go source of the packages matched by
// patterns is written, created, removed or renamed. It only returns on error.
func watch(cfg config, patterns []string) error {
	dirs, err := packageDirs(cfg, patterns)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
		log.WithField("dir", dir).Debug("watching")
	}

	generated := cfg.FilePrefix()
	var pending <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isSource(event.Name, generated) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.WithField("file", event.Name).Debug("changed")
			pending = time.After(settle)
		case <-pending:
			pending = nil
			if err := run(cfg, patterns); err != nil {
				log.Errorf("generation failed: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func packageDirs(cfg config, patterns []string) ([]string, error) {
	pkgs, err := packages.Load(&packages.Config{
		Mode:  packages.NeedName | packages.NeedFiles,
		Tests: cfg.IncludeTests,
	}, patterns...)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var dirs []string
	for _, pkg := range pkgs {
		for _, f := range pkg.GoFiles {
			dir := filepath.Dir(f)
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}
	}
	return dirs, nil
}

func isSource(name, generated string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".go") && !strings.HasPrefix(base, generated)
}
