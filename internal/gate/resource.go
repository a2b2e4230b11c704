package gate

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/passgate/internal/common"
	"github.com/dmitrijs2005/passgate/internal/cryptox"
)

type Kind string

const (
	KindArticle  Kind = "article"
	KindCategory Kind = "category"
)

// Ref names one protectable resource.
type Ref struct {
	Kind Kind
	ID   string
}

func ArticleRef(slug string) Ref {
	return Ref{Kind: KindArticle, ID: slug}
}

func CategoryRef(name string) Ref {
	return Ref{Kind: KindCategory, ID: name}
}

// Key is the name under which an unlock for r is recorded on the client.
func (r Ref) Key() string {
	switch r.Kind {
	case KindArticle:
		return "article_password_" + r.ID
	case KindCategory:
		return "password_" + r.ID
	default:
		return ""
	}
}

func (r Ref) String() string {
	return string(r.Kind) + ":" + r.ID
}

func (r Ref) Validate() error {
	if r.Kind != KindArticle && r.Kind != KindCategory {
		return fmt.Errorf("%w: unknown resource kind %q", common.ErrorInvalidRequest, r.Kind)
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: empty %s identifier", common.ErrorInvalidRequest, r.Kind)
	}
	return nil
}

// Resource is a resolved resource together with what guards it.
// Expected is nil when nothing is configured.
type Resource struct {
	Ref              Ref
	RequiresPassword bool
	Expected         cryptox.Secret
}

// Gated reports whether a check against r is meaningful at all.
func (r Resource) Gated() bool {
	return r.RequiresPassword && r.Expected != nil
}

// Request is what a reader asks for: an article, a category, or an
// article inside a category.
type Request struct {
	Category string
	Article  string
}

func (q Request) Validate() error {
	if strings.TrimSpace(q.Category) == "" && strings.TrimSpace(q.Article) == "" {
		return fmt.Errorf("%w: neither article nor category given", common.ErrorInvalidRequest)
	}
	return nil
}
