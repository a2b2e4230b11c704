// Package content loads blog articles: their gate metadata
// (blogs/<slug>/config.json) and their markdown body (blogs/<slug>/index.md).
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/dmitrijs2005/passgate/internal/common"
	"github.com/dmitrijs2005/passgate/internal/gate"
)

const (
	articleRoot    = "blogs"
	configFileName = "config.json"
	bodyFileName   = "index.md"
)

// Loader is a gate.ContentLoader that can also return article bodies.
type Loader interface {
	gate.ContentLoader
	LoadArticleBody(ctx context.Context, slug string) ([]byte, error)
}

func articlePath(slug, name string) (string, error) {
	if slug == "" || strings.ContainsAny(slug, `/\`) || slug == "." || slug == ".." {
		return "", fmt.Errorf("%w: bad article slug %q", common.ErrorInvalidRequest, slug)
	}
	p := path.Join(articleRoot, slug, name)
	if !fs.ValidPath(p) {
		return "", fmt.Errorf("%w: bad article slug %q", common.ErrorInvalidRequest, slug)
	}
	return p, nil
}

func decodeArticleConfig(data []byte, key string) (*gate.ArticleConfig, error) {
	cfg := &gate.ArticleConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return cfg, nil
}
