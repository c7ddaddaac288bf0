package sitemap

import (
	"context"
	"encoding/xml"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/eragon/internal/config"
	productdomain "github.com/smallbiznis/eragon/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProducts struct {
	productdomain.Service
	entries []productdomain.SitemapEntry
	err     error
}

func (s stubProducts) Sitemap(context.Context) ([]productdomain.SitemapEntry, error) {
	return s.entries, s.err
}

func TestBuildListsProductsAndStaticPages(t *testing.T) {
	b := New(Params{
		Config: config.Config{SiteDomain: "deals.example/"},
		Products: stubProducts{entries: []productdomain.SitemapEntry{
			{ID: 42, Slug: "acme", UpdatedAt: time.Date(2024, 2, 3, 10, 0, 0, 0, time.UTC)},
		}},
	})

	set, err := b.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, set.URLs, 5)

	assert.Equal(t, URL{
		Loc:        "https://deals.example/store/42/acme/",
		LastMod:    "2024-02-03",
		ChangeFreq: "weekly",
		Priority:   "0.9",
	}, set.URLs[0])
	assert.Equal(t, "https://deals.example/", set.URLs[1].Loc)
	assert.Equal(t, "https://deals.example/contact/", set.URLs[4].Loc)
	assert.Equal(t, "monthly", set.URLs[4].ChangeFreq)
	assert.Equal(t, "0.8", set.URLs[4].Priority)
}

func TestRenderProducesValidXML(t *testing.T) {
	b := New(Params{Config: config.Config{SiteDomain: "deals.example"}, Products: stubProducts{}})

	out, err := b.Render(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(out), `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)

	var parsed URLSet
	require.NoError(t, xml.Unmarshal(out, &parsed))
	assert.Len(t, parsed.URLs, 4)
}

func TestBuildPropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	b := New(Params{Config: config.Config{SiteDomain: "deals.example"}, Products: stubProducts{err: boom}})

	_, err := b.Build(context.Background())
	assert.ErrorIs(t, err, boom)
}
