// Package provider turns tile addresses into upstream URLs for each tile
// source and style.
package provider

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/url"
	"strings"

	"github.com/jaennil/guide_helper/backend/tileengine/internal/tile"
)

var ErrUnknownProvider = errors.New("unknown provider or style")

// Provider is one style of one tile source.
type Provider interface {
	ID() string
	Style() string
	// Address converts a grid tile into the form this provider is keyed by.
	Address(g tile.Grid) tile.Address
	URL(a tile.Address) (string, error)
	CacheKey(a tile.Address) string
	Attribution() string
}

// Discoverer is implemented by providers that look up their URL templates
// at runtime.
type Discoverer interface {
	Discover(ctx context.Context) error
}

// Branded is implemented by providers that announce a logo to show next to
// their attribution.
type Branded interface {
	BrandLogo() string
}

// URLRewriter routes every upstream URL through an optional passthrough
// proxy as <base>?url=<escaped url>. A nil or empty rewriter is the identity.
type URLRewriter struct {
	base string
}

func NewURLRewriter(base string) *URLRewriter {
	return &URLRewriter{base: base}
}

func (r *URLRewriter) Rewrite(u string) string {
	if r == nil || r.base == "" {
		return u
	}
	return r.base + "?url=" + url.QueryEscape(u)
}

// expand fills a {name} template.
func expand(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[rand.IntN(len(options))]
}
