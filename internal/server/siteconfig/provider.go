// Package siteconfig holds the site-wide content configuration: the
// category password and, optionally, its argon2id digest.
package siteconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dmitrijs2005/passgate/internal/cryptox"
	"github.com/dmitrijs2005/passgate/internal/logging"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Content is the subset of the site content file the gate reads.
type Content struct {
	PasswordAccessPassword string `json:"passwordAccessPassword" yaml:"passwordAccessPassword"`
	PasswordAccessDigest   string `json:"passwordAccessDigest" yaml:"passwordAccessDigest"`
}

// Provider serves the current site secret and can reload it from disk.
type Provider struct {
	path   string
	logger logging.Logger

	mu     sync.RWMutex
	secret cryptox.Secret
}

// NewStaticProvider returns a provider fixed to the given content.
// Mostly useful in tests.
func NewStaticProvider(c Content) (*Provider, error) {
	s, err := cryptox.SecretFromConfig(c.PasswordAccessPassword, c.PasswordAccessDigest)
	if err != nil {
		return nil, err
	}
	return &Provider{secret: s, logger: logging.NewDiscardLogger()}, nil
}

// Load reads path and returns a provider backed by it. A missing file at
// startup yields a provider with no category secret.
func Load(path string, logger logging.Logger) (*Provider, error) {
	p := &Provider{path: path, logger: logger.With("module", "siteconfig")}
	err := p.Reload()
	if errors.Is(err, fs.ErrNotExist) {
		p.logger.Warn(context.Background(), "site config not found, categories are not protected", "path", path)
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CategorySecret implements gate.SiteConfig.
func (p *Provider) CategorySecret() cryptox.Secret {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.secret
}

// Reload re-reads the file. On failure, including a file that has been
// moved away or deleted, the previous secret is kept.
func (p *Provider) Reload() error {
	c, err := readContent(p.path)
	if err != nil {
		return err
	}

	s, err := cryptox.SecretFromConfig(c.PasswordAccessPassword, c.PasswordAccessDigest)
	if err != nil {
		return fmt.Errorf("site config %s: %w", p.path, err)
	}

	p.mu.Lock()
	p.secret = s
	p.mu.Unlock()
	return nil
}

func readContent(path string) (*Content, error) {
	c := &Content{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return nil, fmt.Errorf("parse site config %s: %w", path, err)
	}

	return c, nil
}

// Watch reloads the provider whenever its file is written, created or
// renamed into place. It blocks until ctx is done.
func (p *Provider) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// editors usually replace the file, so watch its directory
	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	target := filepath.Clean(p.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := p.Reload(); err != nil {
				p.logger.Error(ctx, "site config reload failed", "path", p.path, "error", err)
				continue
			}
			p.logger.Info(ctx, "site config reloaded", "path", p.path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn(ctx, "watcher error", "error", err)
		}
	}
}
