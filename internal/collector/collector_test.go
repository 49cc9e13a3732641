package collector

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pricescout/internal/monitoring"
	"pricescout/internal/source"
)

// one metrics registry per test binary; prometheus collectors cannot be
// registered twice
var testMetrics = monitoring.NewMetrics()

type fakeRenderer struct {
	pages map[string]string // matched by URL substring
	fail  map[string]bool
}

func (f *fakeRenderer) Render(_ context.Context, url, _ string) (string, error) {
	for key := range f.fail {
		if strings.Contains(url, key) {
			return "", errors.New("navigation timeout")
		}
	}
	for key, html := range f.pages {
		if strings.Contains(url, key) {
			return html, nil
		}
	}
	return "", fmt.Errorf("no fixture for %s", url)
}

func testSource(key string) source.Config {
	return source.Config{
		Key:        key,
		Store:      strings.ToUpper(key[:1]) + key[1:],
		Prefix:     key[:3],
		BaseURL:    "https://" + key + ".example",
		SearchPath: "/search?q=%s",
		Selectors: source.Selectors{
			Card:  "div.card",
			Name:  "h3",
			Price: "span.price",
			Link:  "a",
		},
		IDPattern: regexp.MustCompile(`/p/(\d+)`),
	}
}

func listing(ids ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, id := range ids {
		fmt.Fprintf(&b, `<div class="card"><h3>Item %s</h3><span class="price">%s,99</span><a href="/p/%s"></a></div>`, id, id, id)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func newTestCollector(r *fakeRenderer, keys ...string) *Collector {
	var cfgs []source.Config
	for _, k := range keys {
		cfgs = append(cfgs, testSource(k))
	}
	reg := source.NewRegistryWith(cfgs...)
	return New(reg, r, nil, testMetrics, zap.NewNop(), 20, time.Minute)
}

func TestCollectMergesInRegistrationOrder(t *testing.T) {
	renderer := &fakeRenderer{pages: map[string]string{
		"alpha": listing("11", "12"),
		"beta":  listing("21"),
		"gamma": listing("31", "32", "33"),
	}}
	col := newTestCollector(renderer, "alpha", "beta", "gamma")

	result := col.CollectAll(context.Background(), "mouse")
	require.Empty(t, result.Errors)
	require.Len(t, result.Products, 6)

	assert.Equal(t, "alp-11", result.Products[0].ProductID)
	assert.Equal(t, "alp-12", result.Products[1].ProductID)
	assert.Equal(t, "bet-21", result.Products[2].ProductID)
	assert.Equal(t, "gam-31", result.Products[3].ProductID)
}

func TestCollectIsolatesFailingSource(t *testing.T) {
	renderer := &fakeRenderer{
		pages: map[string]string{
			"alpha": listing("11", "12"),
			"gamma": listing("31", "32", "33"),
		},
		fail: map[string]bool{"beta": true},
	}
	col := newTestCollector(renderer, "alpha", "beta", "gamma")

	result := col.CollectAll(context.Background(), "mouse")

	// the failing source contributes zero records, siblings are untouched
	require.Len(t, result.Products, 5)
	require.Contains(t, result.Errors, "beta")
	assert.NotContains(t, result.Errors, "alpha")
	assert.NotContains(t, result.Errors, "gamma")
}

func TestCollectSingleSource(t *testing.T) {
	renderer := &fakeRenderer{pages: map[string]string{"alpha": listing("11")}}
	col := newTestCollector(renderer, "alpha", "beta")

	result := col.Collect(context.Background(), []string{"alpha"}, "mouse")
	require.Empty(t, result.Errors)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "Alpha", result.Products[0].Store)
}

func TestCollectUnknownSource(t *testing.T) {
	col := newTestCollector(&fakeRenderer{}, "alpha")

	result := col.Collect(context.Background(), []string{"nope"}, "mouse")
	assert.Empty(t, result.Products)
	assert.Contains(t, result.Errors, "nope")
}
