package fetch

import (
	"fmt"
	"strings"
)

// Key identifies a cached payload. Domain names the API endpoint family and
// selects its circuit breaker; Discriminator names the record within it.
type Key struct {
	Domain        string
	Discriminator string
}

// NewKey builds a Key.
func NewKey(domain, discriminator string) Key {
	return Key{Domain: domain, Discriminator: discriminator}
}

// String renders the key as "{domain}-{discriminator}".
func (k Key) String() string {
	return k.Domain + "-" + k.Discriminator
}

// Endpoint returns the breaker name for the key.
func (k Key) Endpoint() string {
	return k.Domain
}

// Validate reports whether the key can be rendered and parsed back.
// Domains must be non-empty and free of '-'; discriminators must be non-empty.
func (k Key) Validate() error {
	if k.Domain == "" {
		return fmt.Errorf("%w: empty domain", ErrInvalidKey)
	}
	if strings.Contains(k.Domain, "-") {
		return fmt.Errorf("%w: domain %q contains '-'", ErrInvalidKey, k.Domain)
	}
	if k.Discriminator == "" {
		return fmt.Errorf("%w: empty discriminator for domain %q", ErrInvalidKey, k.Domain)
	}
	return nil
}

// ParseKey splits a rendered key on its first '-'.
func ParseKey(s string) (Key, error) {
	domain, discriminator, ok := strings.Cut(s, "-")
	if !ok {
		return Key{}, fmt.Errorf("%w: %q has no separator", ErrInvalidKey, s)
	}
	k := Key{Domain: domain, Discriminator: discriminator}
	if err := k.Validate(); err != nil {
		return Key{}, err
	}
	return k, nil
}
