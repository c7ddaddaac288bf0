package sitemap

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/smallbiznis/eragon/internal/config"
	productdomain "github.com/smallbiznis/eragon/internal/product/domain"
	"go.uber.org/fx"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

var staticPages = []string{"/", "/stores/", "/submit-store/", "/contact/"}

type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

type Params struct {
	fx.In

	Config   config.Config
	Products productdomain.Service
}

type Builder struct {
	domain   string
	products productdomain.Service
}

func New(p Params) *Builder {
	return &Builder{domain: strings.TrimSuffix(p.Config.SiteDomain, "/"), products: p.Products}
}

// Build lists every store page followed by the static frontend routes.
func (b *Builder) Build(ctx context.Context) (*URLSet, error) {
	entries, err := b.products.Sitemap(ctx)
	if err != nil {
		return nil, err
	}

	set := &URLSet{Xmlns: xmlns, URLs: make([]URL, 0, len(entries)+len(staticPages))}
	for _, e := range entries {
		set.URLs = append(set.URLs, URL{
			Loc:        fmt.Sprintf("https://%s/store/%d/%s/", b.domain, e.ID, e.Slug),
			LastMod:    e.UpdatedAt.UTC().Format("2006-01-02"),
			ChangeFreq: "weekly",
			Priority:   "0.9",
		})
	}
	for _, page := range staticPages {
		set.URLs = append(set.URLs, URL{
			Loc:        fmt.Sprintf("https://%s%s", b.domain, page),
			ChangeFreq: "monthly",
			Priority:   "0.8",
		})
	}
	return set, nil
}

func (b *Builder) Render(ctx context.Context) ([]byte, error) {
	set, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var Module = fx.Module("sitemap",
	fx.Provide(New),
)
