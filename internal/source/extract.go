package source

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricescout/internal/domain"
)

var (
	errNoPrice    = errors.New("no parseable price")
	errNoIdentity = errors.New("no name or product link to derive an id from")

	priceCharsRe = regexp.MustCompile(`[^0-9,.]`)
)

// Extract parses a rendered listing page and returns canonical products,
// capped at maxItems. A card that fails to parse is skipped, never fatal;
// the number of skipped cards is returned alongside. The only error case
// is an unreadable document.
func Extract(cfg Config, htmlContent string, maxItems int) ([]domain.Product, int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, 0, err
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, 0, err
	}

	var products []domain.Product
	dropped := 0

	doc.Find(cfg.Selectors.Card).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(products) >= maxItems {
			return false
		}
		p, err := extractCard(cfg, base, card)
		if err != nil {
			dropped++
			return true
		}
		products = append(products, p)
		return true
	})

	return products, dropped, nil
}

func extractCard(cfg Config, base *url.URL, card *goquery.Selection) (domain.Product, error) {
	name := strings.TrimSpace(card.Find(cfg.Selectors.Name).First().Text())
	if name == "" {
		name = domain.UnknownName
	}

	price, err := ParsePrice(card.Find(cfg.Selectors.Price).First().Text())
	if err != nil {
		return domain.Product{}, errNoPrice
	}

	var originalPrice *float64
	if cfg.Selectors.OriginalPrice != "" {
		if v, err := ParsePrice(card.Find(cfg.Selectors.OriginalPrice).First().Text()); err == nil && v > price {
			originalPrice = &v
		}
	}

	link := card
	if cfg.Selectors.Link != "" {
		link = card.Find(cfg.Selectors.Link).First()
	}
	href, _ := link.Attr("href")
	productURL := absolize(base, href)

	productID := nativeID(cfg, href)
	if productID == "" {
		// No native id in the URL: derive a stable one so repeated
		// scrapes of the same listing keep one history line.
		if name == domain.UnknownName && productURL == "" {
			return domain.Product{}, errNoIdentity
		}
		productID = stableID(cfg.Store, name, productURL)
	}

	img := card.Find(cfg.Selectors.Image).First()
	imageURL, ok := img.Attr("src")
	if !ok || imageURL == "" {
		imageURL, _ = img.Attr("data-src")
	}

	return domain.Product{
		ProductID:     cfg.Prefix + "-" + productID,
		Name:          name,
		Price:         price,
		OriginalPrice: originalPrice,
		ImageURL:      absolize(base, imageURL),
		ProductURL:    productURL,
		Store:         cfg.Store,
	}, nil
}

// ParsePrice normalizes a displayed price string to a decimal value.
// Comma is the decimal separator in all supported locales; dots are
// thousands separators unless no comma is present and the fractional
// part is shorter than three digits.
func ParsePrice(raw string) (float64, error) {
	cleaned := priceCharsRe.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0, errNoPrice
	}

	if i := strings.LastIndex(cleaned, ","); i >= 0 {
		intPart := strings.NewReplacer(".", "", ",", "").Replace(cleaned[:i])
		if intPart == "" {
			// bare-cents prices like ",99"
			intPart = "0"
		}
		cleaned = intPart + "." + strings.TrimRight(cleaned[i+1:], ",")
	} else if parts := strings.Split(cleaned, "."); len(parts) > 1 {
		if last := parts[len(parts)-1]; len(last) == 3 {
			cleaned = strings.Join(parts, "")
		} else if len(parts) > 2 {
			cleaned = strings.Join(parts[:len(parts)-1], "") + "." + last
		}
	}

	v, err := strconv.ParseFloat(strings.TrimRight(cleaned, "."), 64)
	if err != nil {
		return 0, errNoPrice
	}
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNoPrice
	}
	return v, nil
}

func nativeID(cfg Config, href string) string {
	if href == "" || cfg.IDPattern == nil {
		return ""
	}
	m := cfg.IDPattern.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}

// stableID hashes store, normalized name and URL so a listing without a
// recognizable native id still dedups across scrapes.
func stableID(store, name, productURL string) string {
	h := sha256.Sum256([]byte(store + "|" + strings.ToLower(name) + "|" + productURL))
	return hex.EncodeToString(h[:])[:12]
}

func absolize(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(refURL).String()
}
