package fetcher

import (
	"fmt"
	"net"
	"net/url"
)

// validateURL checks that a fetch target is well-formed and, when
// denyPrivateIPs is set, does not resolve into a private or restricted range.
// Redirect targets go through the same check.
func validateURL(rawURL string, denyPrivateIPs bool) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL %q has no host", rawURL)
	}

	if !denyPrivateIPs {
		return nil
	}

	// SSRF対策: プライベートIPアドレスをブロック
	ips, err := net.LookupIP(parsed.Hostname())
	if err != nil {
		// Resolution failures surface later as connection errors; the
		// validation only rejects what it can positively identify.
		return nil
	}
	for _, ip := range ips {
		if isRestrictedIP(ip) {
			return fmt.Errorf("URL %q resolves to restricted address %s", rawURL, ip)
		}
	}
	return nil
}

// isRestrictedIP reports whether an IP belongs to a range the fetcher must
// never reach: loopback, link-local (includes cloud metadata), and private
// networks.
func isRestrictedIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}
	return ip.IsPrivate()
}
