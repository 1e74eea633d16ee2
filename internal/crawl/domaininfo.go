// File: internal/crawl/domaininfo.go
package crawl

import (
	"net/url"
	"strings"

	"github.com/probeworks/aidi/api/schemas"
)

// parseDomainInfo breaks the brand's hostname into parts and derives the
// shape-based trust signals. Pure, no network.
func parseDomainInfo(websiteURL string) (schemas.DomainInfo, bool) {
	u, err := url.Parse(websiteURL)
	if err != nil || u.Hostname() == "" {
		return schemas.DomainInfo{}, false
	}

	domain := u.Hostname()
	parts := strings.Split(domain, ".")
	if len(parts) < 2 {
		return schemas.DomainInfo{}, false
	}

	tld := parts[len(parts)-1]
	sld := parts[len(parts)-2]

	var subdomains []string
	if len(parts) > 2 {
		subdomains = parts[:len(parts)-2]
	}

	return schemas.DomainInfo{
		Domain:       domain,
		TLD:          tld,
		SLD:          sld,
		Subdomains:   subdomains,
		IsWWW:        strings.HasPrefix(domain, "www."),
		DomainLength: len(sld),
		TrustSignals: schemas.DomainTrustSignals{
			HasComTLD:   tld == "com",
			HasOrgTLD:   tld == "org",
			ShortDomain: len(sld) <= 10,
			NoHyphens:   !strings.Contains(sld, "-"),
			NoNumbers:   !strings.ContainsAny(sld, "0123456789"),
		},
	}, true
}
