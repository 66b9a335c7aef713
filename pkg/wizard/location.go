package wizard

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Hash keys mirrored into the location.
const (
	HashFormUID  = "__form_uid"
	HashFormStep = "__form_step"
)

// Location gives the controller the page's hash parameters, query and
// address. Every request payload carries the address as "__location" and the
// referring page as "__referer", then the query values on top.
type Location interface {
	Hash() url.Values
	SetHash(values url.Values)
	Query() url.Values
	Href() string
	Referer() string
}

// Payload keys describing the page a request comes from.
const (
	PayloadLocation = "__location"
	PayloadReferer  = "__referer"
)

// MemoryLocation is a Location held in memory. It is safe for concurrent use.
type MemoryLocation struct {
	mu      sync.RWMutex
	base    *url.URL
	hash    url.Values
	query   url.Values
	referer string
}

// NewMemoryLocation reads the query and fragment of rawURL. The fragment is
// parsed as query parameters, which is how the hash mirror stores them.
func NewMemoryLocation(rawURL string) (*MemoryLocation, error) {
	loc := &MemoryLocation{hash: url.Values{}, query: url.Values{}}
	if strings.TrimSpace(rawURL) == "" {
		return loc, nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("wizard: parse location: %w", err)
	}
	loc.query = parsed.Query()
	loc.base = parsed
	if parsed.Fragment != "" {
		hash, err := url.ParseQuery(parsed.Fragment)
		if err != nil {
			return nil, fmt.Errorf("wizard: parse location hash: %w", err)
		}
		loc.hash = hash
	}
	return loc, nil
}

func (l *MemoryLocation) Hash() url.Values {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneValues(l.hash)
}

func (l *MemoryLocation) SetHash(values url.Values) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hash = cloneValues(values)
}

func (l *MemoryLocation) Query() url.Values {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneValues(l.query)
}

// Href is the full address with the current hash, or "" when the location
// was built without a URL.
func (l *MemoryLocation) Href() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.base == nil {
		return ""
	}
	href := *l.base
	href.Fragment, href.RawFragment = l.hash.Encode(), ""
	return href.String()
}

func (l *MemoryLocation) Referer() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.referer
}

// SetReferer records the page that led to this one.
func (l *MemoryLocation) SetReferer(referer string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.referer = referer
}

// Fragment renders the hash the way a browser would show it, without "#".
func (l *MemoryLocation) Fragment() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hash.Encode()
}

func cloneValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for key, list := range values {
		out[key] = append([]string(nil), list...)
	}
	return out
}
