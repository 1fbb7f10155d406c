package provider

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jaennil/guide_helper/backend/tileengine/internal/tile"
)

const OSMProviderID = "osm"

var ErrMissingAPIKey = errors.New("provider requires an api key")

const (
	osmAttribution       = "Data and map information provided by Open Street Map and contributors, CC-BY-SA"
	mapquestAttribution  = "Data, imagery and map information provided by MapQuest, Open Street Map and contributors, CC-BY-SA"
	cloudmadeAttribution = "Data and map information provided by Open Street Map, Cloudmade and contributors, CC-BY-SA"
	stamenAttribution    = "Map tiles by Stamen Design, under CC BY 3.0. Data by OpenStreetMap, under CC BY SA"
)

// GridStyle describes a z/x/y tile source.
type GridStyle struct {
	Name        string
	Template    string
	Subdomains  []string
	Attribution string
	NeedsKey    bool
}

var OSMStyles = []GridStyle{
	{
		Name:        "mapnik",
		Template:    "http://{s}tile.openstreetmap.org/{z}/{x}/{y}.png",
		Subdomains:  []string{"", "a.", "b.", "c."},
		Attribution: osmAttribution,
	},
	{
		Name:        "mapquest",
		Template:    "http://otile{s}.mqcdn.com/tiles/1.0.0/osm/{z}/{x}/{y}.jpg",
		Subdomains:  []string{"1", "2", "3"},
		Attribution: mapquestAttribution,
	},
	{
		Name:        "cloudmade",
		Template:    "http://{s}.tile.cloudmade.com/{key}/{style}/256/{z}/{x}/{y}.png",
		Subdomains:  []string{"a", "b", "c"},
		Attribution: cloudmadeAttribution,
		NeedsKey:    true,
	},
	{
		Name:        "watercolor",
		Template:    "http://tile.stamen.com/watercolor/{z}/{x}/{y}.png",
		Attribution: stamenAttribution,
	},
	{
		Name:        "toner",
		Template:    "http://tile.stamen.com/toner/{z}/{x}/{y}.png",
		Attribution: stamenAttribution,
	},
	{
		Name:        "terrain",
		Template:    "http://tile.stamen.com/terrain/{z}/{x}/{y}.png",
		Attribution: stamenAttribution,
	},
}

// GridProvider serves tiles addressed by x, y and zoom.
type GridProvider struct {
	id       string
	style    GridStyle
	apiKey   string
	styleID  int
	rewriter *URLRewriter
}

var _ Provider = (*GridProvider)(nil)

type GridOptions struct {
	APIKey   string
	StyleID  int
	Rewriter *URLRewriter
}

func NewGridProvider(id string, style GridStyle, opts GridOptions) (*GridProvider, error) {
	if err := tile.ValidateID(id); err != nil {
		return nil, err
	}
	if err := tile.ValidateID(style.Name); err != nil {
		return nil, err
	}
	if style.NeedsKey && opts.APIKey == "" {
		return nil, fmt.Errorf("%w: %s/%s", ErrMissingAPIKey, id, style.Name)
	}
	if opts.StyleID == 0 {
		opts.StyleID = 1
	}

	return &GridProvider{
		id:       id,
		style:    style,
		apiKey:   opts.APIKey,
		styleID:  opts.StyleID,
		rewriter: opts.Rewriter,
	}, nil
}

func (p *GridProvider) ID() string                       { return p.id }
func (p *GridProvider) Style() string                    { return p.style.Name }
func (p *GridProvider) Attribution() string              { return p.style.Attribution }
func (p *GridProvider) Address(g tile.Grid) tile.Address { return g }

func (p *GridProvider) CacheKey(a tile.Address) string {
	return tile.Key(p.id, p.style.Name, a.Grid())
}

func (p *GridProvider) URL(a tile.Address) (string, error) {
	g := a.Grid()
	if !g.Valid() {
		return "", fmt.Errorf("%w: %v", tile.ErrAddressOutOfRange, g)
	}

	u := expand(p.style.Template, map[string]string{
		"s":     pick(p.style.Subdomains),
		"z":     strconv.Itoa(g.Z),
		"x":     strconv.Itoa(g.X),
		"y":     strconv.Itoa(g.Y),
		"key":   p.apiKey,
		"style": strconv.Itoa(p.styleID),
	})
	return p.rewriter.Rewrite(u), nil
}
