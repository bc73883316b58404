// Package security validates URLs that come from authored content or are
// fetched on behalf of a page.
package security

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidateHTTPURL checks for SSRF vulnerabilities by blocking requests to internal networks.
// It rejects localhost, private IP ranges, link-local addresses, and cloud metadata endpoints.
func ValidateHTTPURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	// Only allow http and https schemes
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("URL must have a host")
	}

	// Block localhost variations
	hostLower := strings.ToLower(host)
	if hostLower == "localhost" || hostLower == "localhost.localdomain" {
		return fmt.Errorf("requests to localhost are not allowed")
	}

	// Parse as IP address
	ip := net.ParseIP(host)
	if ip == nil {
		// Not an IP address - could be a hostname that resolves to internal IP.
		// A more complete solution would resolve the hostname and check the IP.
		return nil
	}

	// Block loopback addresses (127.0.0.0/8, ::1)
	if ip.IsLoopback() {
		return fmt.Errorf("requests to loopback addresses are not allowed")
	}

	// Block private network addresses
	if ip.IsPrivate() {
		return fmt.Errorf("requests to private network addresses are not allowed")
	}

	// Block link-local addresses (169.254.0.0/16, fe80::/10)
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return fmt.Errorf("requests to link-local addresses are not allowed")
	}

	// Block unspecified addresses (0.0.0.0, ::)
	if ip.IsUnspecified() {
		return fmt.Errorf("requests to unspecified addresses are not allowed")
	}

	return nil
}

// SafeLink returns the trimmed href when it is relative or uses http, https,
// mailto or tel. Script and data URLs are rejected.
func SafeLink(raw string) (string, bool) {
	return safeURL(raw, "http", "https", "mailto", "tel")
}

// SafeEmbed returns the trimmed src when it is relative or uses http or
// https. It guards iframe, video and image sources built from content.
func SafeEmbed(raw string) (string, bool) {
	return safeURL(raw, "http", "https")
}

func safeURL(raw string, schemes ...string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if parsed.Scheme == "" {
		// "javascript:alert(1)" with odd casing or whitespace still parses
		// with a scheme; a bare colon before any slash means an opaque URL.
		if i := strings.IndexByte(raw, ':'); i >= 0 && !strings.ContainsAny(raw[:i], "/?#") {
			return "", false
		}
		return raw, true
	}
	scheme := strings.ToLower(parsed.Scheme)
	for _, s := range schemes {
		if scheme == s {
			return raw, true
		}
	}
	return "", false
}
