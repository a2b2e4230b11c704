package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passgate/internal/common"
	"github.com/dmitrijs2005/passgate/internal/cryptox"
)

// SiteConfig exposes the site-wide category secret. A nil secret means
// categories are not protected.
type SiteConfig interface {
	CategorySecret() cryptox.Secret
}

// ArticleConfig is the gate-relevant part of an article's metadata.
// Category names the category the article is filed under, if any.
type ArticleConfig struct {
	Category          string `json:"category,omitempty" yaml:"category,omitempty"`
	PasswordProtected bool   `json:"passwordProtected" yaml:"passwordProtected"`
	Password          string `json:"password,omitempty" yaml:"password,omitempty"`
	PasswordDigest    string `json:"passwordDigest,omitempty" yaml:"passwordDigest,omitempty"`
}

// ContentLoader fetches article metadata by slug.
type ContentLoader interface {
	LoadArticleConfig(ctx context.Context, slug string) (*ArticleConfig, error)
}

type Resolver struct {
	site   SiteConfig
	loader ContentLoader
}

func NewResolver(site SiteConfig, loader ContentLoader) *Resolver {
	return &Resolver{site: site, loader: loader}
}

// Resolve decides which resource governs q.
//
// A protected article with a secret wins and the category is not looked
// at. Otherwise a category with a configured site secret governs. The
// category of an article is taken from the article's own metadata; a
// request naming a different one is invalid. The request's category is
// only used for articles that declare none or whose metadata is missing.
// If neither secret applies and the article metadata could not be loaded,
// the result is common.ErrorConfigUnavailable, so verification fails
// closed. Anything else resolves to an ungated resource.
func (r *Resolver) Resolve(ctx context.Context, q Request) (Resource, error) {
	if err := q.Validate(); err != nil {
		return Resource{}, err
	}

	category := q.Category

	var loadErr error
	if q.Article != "" {
		cfg, res, err := r.resolveArticle(ctx, q.Article)
		if err != nil {
			loadErr = err
		}

		if cfg != nil && cfg.Category != "" {
			if category != "" && category != cfg.Category {
				return Resource{}, fmt.Errorf("%w: article %q is not in category %q", common.ErrorInvalidRequest, q.Article, category)
			}
			category = cfg.Category
		}

		if err == nil && res.Gated() {
			return res, nil
		}
	}

	if category != "" {
		if secret := r.site.CategorySecret(); secret != nil {
			return Resource{Ref: CategoryRef(category), RequiresPassword: true, Expected: secret}, nil
		}
	}

	if loadErr != nil {
		return Resource{}, loadErr
	}

	if q.Article != "" {
		return Resource{Ref: ArticleRef(q.Article)}, nil
	}
	return Resource{Ref: CategoryRef(category)}, nil
}

// resolveArticle returns the article's metadata, when it could be read,
// along with the resource it describes. A missing article yields a nil
// config and an ungated resource.
func (r *Resolver) resolveArticle(ctx context.Context, slug string) (*ArticleConfig, Resource, error) {
	ref := ArticleRef(slug)

	cfg, err := r.loader.LoadArticleConfig(ctx, slug)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, Resource{Ref: ref}, nil
		}
		return nil, Resource{}, fmt.Errorf("%w: article %q: %v", common.ErrorConfigUnavailable, slug, err)
	}

	if !cfg.PasswordProtected {
		return cfg, Resource{Ref: ref}, nil
	}

	secret, err := cryptox.SecretFromConfig(cfg.Password, cfg.PasswordDigest)
	if err != nil {
		return cfg, Resource{}, fmt.Errorf("%w: article %q: %v", common.ErrorConfigUnavailable, slug, err)
	}

	return cfg, Resource{Ref: ref, RequiresPassword: true, Expected: secret}, nil
}
