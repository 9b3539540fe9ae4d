package geoip

import (
	"errors"
	"fmt"
	"net"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/oschwald/geoip2-golang"
)

const cacheSize = 4096

// ErrUnavailable is returned when the resolver is not initialized.
var ErrUnavailable = errors.New("geoip resolver unavailable")

// CountryResolver resolves ISO country codes from IP addresses.
type CountryResolver interface {
	CountryCode(ip string) (string, error)
}

// Resolver looks up countries in a MaxMind GeoIP2 database and remembers
// recent answers.
type Resolver struct {
	reader *geoip2.Reader
	cache  *lru.Cache
}

// NewResolver opens the GeoIP database at the given path. When the path is empty, nil is returned.
func NewResolver(path string) (CountryResolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		_ = reader.Close()
		return nil, fmt.Errorf("geoip: cache: %w", err)
	}
	return &Resolver{reader: reader, cache: cache}, nil
}

// CountryCode returns the ISO country code for the provided IP. Private and
// loopback addresses resolve to an empty code without touching the database.
func (r *Resolver) CountryCode(ip string) (string, error) {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return "", fmt.Errorf("geoip: invalid ip %q", ip)
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return "", nil
	}
	if r == nil || r.reader == nil {
		return "", ErrUnavailable
	}
	key := parsed.String()
	if code, ok := r.cache.Get(key); ok {
		return code.(string), nil
	}
	record, err := r.reader.Country(parsed)
	if err != nil {
		return "", fmt.Errorf("geoip: lookup country: %w", err)
	}
	code := ""
	if record != nil {
		code = record.Country.IsoCode
	}
	r.cache.Add(key, code)
	return code, nil
}

// Close closes the underlying database reader.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
