// Package urlnorm canonicalizes document URLs so that every page has exactly
// one identity key in the index.
package urlnorm

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
)

// CanonicalScheme is the scheme every normalized URL carries.
const CanonicalScheme = "https"

// Normalize strips the query string and fragment and forces the scheme to
// https. Input without a host cannot identify a page and is rejected with
// ErrMalformedURL. Normalize is idempotent.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", apperrors.ErrMalformedURL, raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: %q has no host", apperrors.ErrMalformedURL, raw)
	}
	u.Scheme = CanonicalScheme
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}
