package domain

import (
	"regexp"
	"strings"
	"time"
)

// Shop represents one merchant's store connection. The access token is
// stored alongside the domain; it must never reach a log in cleartext.
type Shop struct {
	ID          string    `json:"id"`
	Domain      string    `json:"shop_domain"`
	AccessToken string    `json:"-"`
	Scope       string    `json:"scope"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var schemePrefix = regexp.MustCompile(`^https?://`)

// NormalizeShopDomain brings a merchant-entered domain into the canonical
// <name>.myshopify.com form: the scheme and one trailing slash are
// stripped, a single ".myshopify.com" occurrence is removed, and the
// suffix is re-appended. Case is preserved as entered.
func NormalizeShopDomain(raw string) string {
	s := schemePrefix.ReplaceAllString(raw, "")
	s = strings.TrimSuffix(s, "/")
	s = strings.Replace(s, ".myshopify.com", "", 1)
	return s + ".myshopify.com"
}
