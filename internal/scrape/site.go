package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Site identifies a supported storefront.
type Site string

const (
	SiteAmazon   Site = "amazon"
	SiteFlipkart Site = "flipkart"
	SiteMyntra   Site = "myntra"
)

// PlaceholderName is used when no name selector matches. A missing name
// must not prevent price tracking.
const PlaceholderName = "Unknown Product"

// Extraction is the uniform product record produced from a page.
// RawPrice is the untouched price text; empty means no price rule matched.
type Extraction struct {
	Name     string
	RawPrice string
}

// Adapter extracts a product record from one site's markup. Each variant
// carries ordered candidate selectors; the first yielding non-empty text wins.
type Adapter struct {
	site           Site
	nameSelectors  []string
	priceSelectors []string
}

// Site reports which storefront the adapter handles.
func (a *Adapter) Site() Site {
	return a.site
}

// Extract pulls the product name and raw price text out of page content.
func (a *Adapter) Extract(pageContent string) (Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageContent))
	if err != nil {
		return Extraction{}, fmt.Errorf("parse %s page: %w", a.site, err)
	}

	name := firstText(doc, a.nameSelectors)
	if name == "" {
		name = PlaceholderName
	}

	return Extraction{
		Name:     name,
		RawPrice: firstText(doc, a.priceSelectors),
	}, nil
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

func newAmazonAdapter() *Adapter {
	return &Adapter{
		site:          SiteAmazon,
		nameSelectors: []string{"#productTitle"},
		priceSelectors: []string{
			"#priceblock_ourprice",
			"#priceblock_dealprice",
			"span.a-price-whole",
			"span.a-price > span.a-offscreen",
		},
	}
}

func newFlipkartAdapter() *Adapter {
	return &Adapter{
		site:          SiteFlipkart,
		nameSelectors: []string{"span.B_NuCI", "span.LMizgS"},
		priceSelectors: []string{
			"._30jeq3._16Jk6d",
			".hZ3P6w.bnqy13",
		},
	}
}

func newMyntraAdapter() *Adapter {
	return &Adapter{
		site:          SiteMyntra,
		nameSelectors: []string{".pdp-title", ".pdp-name"},
		priceSelectors: []string{
			".pdp-price",
			".pdp-discount-container > .pdp-price",
		},
	}
}
