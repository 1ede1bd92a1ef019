package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

func runWatch(args []string) error {
	f, sources, err := parseArgs("watch", args)
	if err != nil {
		return err
	}
	cfg, err := f.resolve()
	if err != nil {
		return err
	}
	if cfg.Pack.Output != "" && len(sources) > 1 {
		return errOutputWithManySources
	}
	debounce, err := cfg.Watch.debounce()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	// The bar would interleave with log output on every rebuild.
	cfg.Pack.Progress = false
	p, err := newPacker(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return watch(ctx, p, sources, debounce)
}

// watch packs every source once, then re-packs a source whenever it or a .bin file in
// its directory is created or written. Events are coalesced for the debounce delay.
func watch(ctx context.Context, p *packer, sources []string, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs := make([]string, len(sources))
	dirs := make(map[string]bool)
	for i, src := range sources {
		a, err := filepath.Abs(src)
		if err != nil {
			return err
		}
		abs[i] = a
		if dir := filepath.Dir(a); !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
		if _, err := p.pack(a, false); err != nil {
			p.logger.Error("pack failed", "source", a, "err", err)
		}
	}
	p.logger.Info("watching", "sources", len(abs), "directories", len(dirs))

	pending := make(map[string]bool)
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			changed := affected(abs, e.Name)
			if len(changed) == 0 {
				continue
			}
			for _, src := range changed {
				pending[src] = true
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Error("watch error", "err", err)

		case <-timer.C:
			for src := range pending {
				if _, err := p.pack(src, true); err != nil {
					p.logger.Error("pack failed", "source", src, "err", err)
				}
			}
			clear(pending)
		}
	}
}

// affected returns the sources a change to name requires re-packing.
func affected(sources []string, name string) []string {
	name, err := filepath.Abs(name)
	if err != nil {
		return nil
	}
	isBin := strings.EqualFold(filepath.Ext(name), ".bin")

	var out []string
	for _, src := range sources {
		if name == src || (isBin && filepath.Dir(name) == filepath.Dir(src)) {
			out = append(out, src)
		}
	}
	return out
}
