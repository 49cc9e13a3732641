package source

import "regexp"

// The nine supported retailers. Order here is registration order and is
// preserved by the collector when merging results.
var configs = []Config{
	{
		Key:           "amazon",
		Store:         "Amazon",
		Prefix:        "amz",
		BaseURL:       "https://www.amazon.nl",
		SearchPath:    "/s?k=%s",
		ReadySelector: "div[data-component-type='s-search-result']",
		Selectors: Selectors{
			Card:          "div[data-component-type='s-search-result']",
			Name:          "h2 a span, h2 span",
			Price:         "span.a-price > span.a-offscreen",
			OriginalPrice: "span.a-price.a-text-price > span.a-offscreen",
			Image:         "img.s-image",
			Link:          "h2 a, a.a-link-normal",
		},
		IDPattern: regexp.MustCompile(`/dp/([A-Z0-9]{10})`),
	},
	{
		Key:           "bol",
		Store:         "Bol.com",
		Prefix:        "bol",
		BaseURL:       "https://www.bol.com",
		SearchPath:    "/nl/nl/s/?searchtext=%s",
		ReadySelector: "li.product-item--row, div[data-test='product-item']",
		Selectors: Selectors{
			Card:          "li.product-item--row, div[data-test='product-item']",
			Name:          "a.product-title, [data-test='product-title']",
			Price:         "[data-test='price'], span.promo-price",
			OriginalPrice: "[data-test='list-price'], del",
			Image:         "img",
			Link:          "a.product-title, a[data-test='product-title']",
		},
		IDPattern: regexp.MustCompile(`/p/[^/]+/(\d+)`),
	},
	{
		Key:           "coolblue",
		Store:         "Coolblue",
		Prefix:        "cbl",
		BaseURL:       "https://www.coolblue.nl",
		SearchPath:    "/zoeken?query=%s",
		ReadySelector: "div.product-card",
		Selectors: Selectors{
			Card:          "div.product-card",
			Name:          "a.product-card__title, div.product-card__title a",
			Price:         "strong.sales-price__current",
			OriginalPrice: "del.sales-price__former, span.sales-price__former",
			Image:         "img.product-card__image, img",
			Link:          "a.product-card__title, div.product-card__title a",
		},
		IDPattern: regexp.MustCompile(`/product/(\d+)`),
	},
	{
		Key:           "mediamarkt",
		Store:         "MediaMarkt",
		Prefix:        "mmk",
		BaseURL:       "https://www.mediamarkt.nl",
		SearchPath:    "/nl/search.html?query=%s",
		ReadySelector: "div[data-test='mms-search-srp-productlist-item']",
		Selectors: Selectors{
			Card:          "div[data-test='mms-search-srp-productlist-item']",
			Name:          "p[data-test='product-title']",
			Price:         "span[data-test='branded-price-whole-value'], div[data-test='mms-price']",
			OriginalPrice: "span[data-test='branded-price-strikethrough']",
			Image:         "img",
			Link:          "a[data-test='mms-router-link']",
		},
		IDPattern: regexp.MustCompile(`-(\d+)\.html`),
	},
	{
		Key:           "wehkamp",
		Store:         "Wehkamp",
		Prefix:        "whk",
		BaseURL:       "https://www.wehkamp.nl",
		SearchPath:    "/zoeken/?q=%s",
		ReadySelector: "article[data-testid='plp-product-card']",
		Selectors: Selectors{
			Card:          "article[data-testid='plp-product-card']",
			Name:          "[data-testid='plp-product-card-title']",
			Price:         "[data-testid='price-current']",
			OriginalPrice: "[data-testid='price-previous']",
			Image:         "img",
			Link:          "a",
		},
		IDPattern: regexp.MustCompile(`/([A-Z0-9]{6,})\.html`),
	},
	{
		Key:           "blokker",
		Store:         "Blokker",
		Prefix:        "blk",
		BaseURL:       "https://www.blokker.nl",
		SearchPath:    "/search?q=%s",
		ReadySelector: "div.product-tile",
		Selectors: Selectors{
			Card:          "div.product-tile",
			Name:          "a.product-tile__name, div.product-tile__name",
			Price:         "span.product-tile__price-current, span.price__current",
			OriginalPrice: "span.product-tile__price-old, span.price__old",
			Image:         "img.product-tile__image, img",
			Link:          "a.product-tile__name, a.product-tile__link",
		},
		IDPattern: regexp.MustCompile(`/(\d+)(?:\.html)?/?$`),
	},
	{
		Key:           "alternate",
		Store:         "Alternate",
		Prefix:        "alt",
		BaseURL:       "https://www.alternate.nl",
		SearchPath:    "/listing.xhtml?q=%s",
		ReadySelector: "div.grid-container.listing a.productBox",
		Selectors: Selectors{
			Card:          "a.productBox",
			Name:          "div.product-name",
			Price:         "span.price",
			OriginalPrice: "span.strikethrough",
			Image:         "img.productPicture, img",
			Link:          "", // the card itself is the anchor
		},
		IDPattern: regexp.MustCompile(`/(\d+)(?:\?|$)`),
	},
	{
		Key:           "azerty",
		Store:         "Azerty",
		Prefix:        "azy",
		BaseURL:       "https://azerty.nl",
		SearchPath:    "/catalogsearch/result/?q=%s",
		ReadySelector: "li.item.product.product-item",
		Selectors: Selectors{
			Card:          "li.item.product.product-item",
			Name:          "a.product-item-link",
			Price:         "span.price-wrapper span.price, span.special-price span.price",
			OriginalPrice: "span.old-price span.price",
			Image:         "img.product-image-photo",
			Link:          "a.product-item-link",
		},
		IDPattern: regexp.MustCompile(`/(\d+)-`),
	},
	{
		Key:           "megekko",
		Store:         "Megekko",
		Prefix:        "mgk",
		BaseURL:       "https://www.megekko.nl",
		SearchPath:    "/zoeken/%s",
		ReadySelector: "div.prodGrid div.product",
		Selectors: Selectors{
			Card:          "div.prodGrid div.product, div.prodList div.product",
			Name:          "div.title, a.productTitle",
			Price:         "div.price, span.prijs",
			OriginalPrice: "div.price-old, span.vanPrijs",
			Image:         "img",
			Link:          "a",
		},
		IDPattern: regexp.MustCompile(`/(\d+)/`),
	},
}
