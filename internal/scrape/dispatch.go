package scrape

import (
	"errors"
	"strings"
)

// ErrUnsupportedSite indicates no adapter matches the URL.
var ErrUnsupportedSite = errors.New("scrape: unsupported site")

// Dispatcher routes tracked URLs to site adapters in a fixed priority order.
type Dispatcher struct {
	routes []route
}

type route struct {
	pattern string
	adapter *Adapter
}

// NewDispatcher builds the dispatcher over all supported sites.
// Match order is fixed: amazon, then flipkart, then myntra.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		routes: []route{
			{pattern: "amazon", adapter: newAmazonAdapter()},
			{pattern: "flipkart", adapter: newFlipkartAdapter()},
			{pattern: "myntra", adapter: newMyntraAdapter()},
		},
	}
}

// ForURL returns the adapter for url, or ErrUnsupportedSite when no
// pattern matches. First match wins.
func (d *Dispatcher) ForURL(url string) (*Adapter, error) {
	for _, r := range d.routes {
		if strings.Contains(url, r.pattern) {
			return r.adapter, nil
		}
	}
	return nil, ErrUnsupportedSite
}
