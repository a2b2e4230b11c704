package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/passgate/internal/common"
	"github.com/dmitrijs2005/passgate/internal/gate"
)

// DirLoader reads articles from a local directory tree.
type DirLoader struct {
	fsys fs.FS
}

func NewDirLoader(root string) *DirLoader {
	return &DirLoader{fsys: os.DirFS(root)}
}

// NewFSLoader wraps an arbitrary fs.FS, e.g. an fstest.MapFS.
func NewFSLoader(fsys fs.FS) *DirLoader {
	return &DirLoader{fsys: fsys}
}

func (l *DirLoader) LoadArticleConfig(ctx context.Context, slug string) (*gate.ArticleConfig, error) {
	data, key, err := l.read(slug, configFileName)
	if err != nil {
		return nil, err
	}
	return decodeArticleConfig(data, key)
}

func (l *DirLoader) LoadArticleBody(ctx context.Context, slug string) ([]byte, error) {
	data, _, err := l.read(slug, bodyFileName)
	return data, err
}

func (l *DirLoader) read(slug, name string) ([]byte, string, error) {
	p, err := articlePath(slug, name)
	if err != nil {
		return nil, "", err
	}

	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, p, common.ErrorNotFound
		}
		return nil, p, fmt.Errorf("read %s: %w", p, err)
	}
	return data, p, nil
}
