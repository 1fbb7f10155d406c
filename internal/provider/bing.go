package provider

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/jaennil/guide_helper/backend/tileengine/internal/fetch"
	"github.com/jaennil/guide_helper/backend/tileengine/internal/tile"
)

const (
	BingProviderID = "bing"

	bingMetadataURL = "http://dev.virtualearth.net/REST/v1/Imagery/Metadata/%s?mapVersion=v1&o=xml&incl=ImageryProviders&key=%s"
	bingAttribution = "Maps copyright © Microsoft and its suppliers. All rights reserved."
)

var ErrMetadata = errors.New("bing imagery metadata unusable")

// BingStyle describes one Bing imagery set. DefaultTemplate is used until
// metadata discovery succeeds.
type BingStyle struct {
	Name            string
	Imagery         string
	DefaultTemplate string
}

var BingStyles = []BingStyle{
	{
		Name:            "road",
		Imagery:         "Road",
		DefaultTemplate: "http://ecn.{subdomain}.tiles.virtualearth.net/tiles/r{quadkey}.jpeg?g=950&mkt={culture}&shading=hill&stl=H",
	},
	{
		Name:            "aerial",
		Imagery:         "Aerial",
		DefaultTemplate: "http://ecn.{subdomain}.tiles.virtualearth.net/tiles/a{quadkey}.jpeg?g=950",
	},
	{
		Name:            "aerial_with_labels",
		Imagery:         "AerialWithLabels",
		DefaultTemplate: "http://ecn.{subdomain}.tiles.virtualearth.net/tiles/h{quadkey}.jpeg?g=950&mkt={culture}&stl=H",
	},
}

var defaultBingSubdomains = []string{"t0"}

type bingTemplate struct {
	url        string
	subdomains []string
	logo       string
}

type bingMetadata struct {
	XMLName      xml.Name      `xml:"Response"`
	StatusCode   int           `xml:"StatusCode"`
	BrandLogoURI string        `xml:"BrandLogoUri"`
	Imagery      []bingImagery `xml:"ResourceSets>ResourceSet>Resources>ImageryMetadata"`
}

type bingImagery struct {
	ImageURL   string   `xml:"ImageUrl"`
	Subdomains []string `xml:"ImageUrlSubdomains>string"`
	ZoomMin    int      `xml:"ZoomMin"`
	ZoomMax    int      `xml:"ZoomMax"`
}

// QuadkeyProvider serves Bing tiles addressed by quadkey.
type QuadkeyProvider struct {
	style       BingStyle
	apiKey      string
	culture     string
	metadataURL string
	rewriter    *URLRewriter
	fetcher     fetch.Fetcher
	template    atomic.Pointer[bingTemplate]
}

var (
	_ Provider   = (*QuadkeyProvider)(nil)
	_ Discoverer = (*QuadkeyProvider)(nil)
	_ fetch.Hook = (*QuadkeyProvider)(nil)
)

type QuadkeyOptions struct {
	APIKey   string
	Culture  string
	Rewriter *URLRewriter
	Fetcher  fetch.Fetcher
	// MetadataURL overrides the imagery metadata endpoint. It is a
	// fmt template taking the imagery set and the api key.
	MetadataURL string
}

func NewQuadkeyProvider(style BingStyle, opts QuadkeyOptions) (*QuadkeyProvider, error) {
	if err := tile.ValidateID(style.Name); err != nil {
		return nil, err
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: %s/%s", ErrMissingAPIKey, BingProviderID, style.Name)
	}
	if opts.Culture == "" {
		opts.Culture = "en-GB"
	}
	if opts.MetadataURL == "" {
		opts.MetadataURL = bingMetadataURL
	}

	p := &QuadkeyProvider{
		style:       style,
		apiKey:      opts.APIKey,
		culture:     opts.Culture,
		metadataURL: opts.MetadataURL,
		rewriter:    opts.Rewriter,
		fetcher:     opts.Fetcher,
	}
	p.template.Store(&bingTemplate{url: style.DefaultTemplate, subdomains: defaultBingSubdomains})
	return p, nil
}

func (p *QuadkeyProvider) ID() string          { return BingProviderID }
func (p *QuadkeyProvider) Style() string       { return p.style.Name }
func (p *QuadkeyProvider) Attribution() string { return bingAttribution }

var _ Branded = (*QuadkeyProvider)(nil)

// BrandLogo is the logo URL announced by the metadata service, if any.
func (p *QuadkeyProvider) BrandLogo() string {
	return p.template.Load().logo
}

func (p *QuadkeyProvider) Address(g tile.Grid) tile.Address {
	return g.Quadkey()
}

func (p *QuadkeyProvider) CacheKey(a tile.Address) string {
	return tile.Key(BingProviderID, p.style.Name, toQuadkey(a))
}

func (p *QuadkeyProvider) URL(a tile.Address) (string, error) {
	q := toQuadkey(a)
	if _, err := tile.ParseQuadkey(string(q)); err != nil {
		return "", fmt.Errorf("%w: %v", tile.ErrAddressOutOfRange, err)
	}
	// Bing has no single world tile.
	if q.Zoom() < 1 {
		return "", fmt.Errorf("%w: bing zoom %d", tile.ErrAddressOutOfRange, q.Zoom())
	}
	if g, ok := a.(tile.Grid); ok && !g.Valid() {
		return "", fmt.Errorf("%w: %v", tile.ErrAddressOutOfRange, g)
	}

	t := p.template.Load()
	u := expand(t.url, map[string]string{
		"subdomain": pick(t.subdomains),
		"quadkey":   string(q),
		"culture":   p.culture,
	})
	return p.rewriter.Rewrite(u), nil
}

// Discover fetches the imagery metadata and swaps in the announced URL
// template. On any failure the current template is kept.
func (p *QuadkeyProvider) Discover(ctx context.Context) error {
	if p.fetcher == nil {
		return nil
	}

	u := p.rewriter.Rewrite(fmt.Sprintf(p.metadataURL, p.style.Imagery, p.apiKey))
	data, err := p.fetcher.Fetch(ctx, u)
	if err != nil {
		return fmt.Errorf("fetch %s metadata: %w", p.style.Imagery, err)
	}

	t, err := parseBingMetadata(data)
	if err != nil {
		return fmt.Errorf("%s: %w", p.style.Imagery, err)
	}
	if t.logo != "" {
		t.logo = p.rewriter.Rewrite(t.logo)
	}

	p.template.Store(t)
	return nil
}

func parseBingMetadata(data []byte) (*bingTemplate, error) {
	var md bingMetadata
	if err := xml.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	if md.StatusCode != 0 && md.StatusCode != 200 {
		return nil, fmt.Errorf("%w: status %d", ErrMetadata, md.StatusCode)
	}
	if len(md.Imagery) == 0 || md.Imagery[0].ImageURL == "" {
		return nil, fmt.Errorf("%w: no image url", ErrMetadata)
	}

	im := md.Imagery[0]
	subdomains := im.Subdomains
	if len(subdomains) == 0 {
		subdomains = defaultBingSubdomains
	}
	return &bingTemplate{url: im.ImageURL, subdomains: subdomains, logo: md.BrandLogoURI}, nil
}

func toQuadkey(a tile.Address) tile.Quadkey {
	if q, ok := a.(tile.Quadkey); ok {
		return q
	}
	return a.Grid().Quadkey()
}
