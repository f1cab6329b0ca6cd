package retriever

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"store-auditor/internal/types"
)

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// NormalizeURL trims the input, strips trailing slashes and prefixes https:// when no scheme is present.
// Malformed URLs fail with ErrInvalidURLFormat, local or private hosts with ErrLocalURLRejected.
func NormalizeURL(raw string) (string, error) {
	target := strings.TrimRight(strings.TrimSpace(raw), "/")
	if target == "" {
		return "", fmt.Errorf("%w: empty URL", types.ErrInvalidURLFormat)
	}
	if !schemePattern.MatchString(target) {
		target = "https://" + target
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrInvalidURLFormat, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", types.ErrInvalidURLFormat, parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" || strings.ContainsAny(host, " \t\n") {
		return "", fmt.Errorf("%w: missing host in %q", types.ErrInvalidURLFormat, raw)
	}
	if IsLocalHost(host) {
		return "", fmt.Errorf("%w: %s", types.ErrLocalURLRejected, host)
	}
	if !strings.Contains(host, ".") && net.ParseIP(host) == nil {
		return "", fmt.Errorf("%w: %q is not a public host name", types.ErrInvalidURLFormat, host)
	}

	return target, nil
}

var localPrefixes = []string{"127.", "10.", "172.", "192.168."}

// IsLocalHost reports whether host names the local machine or a private network.
// IPv4 literals under 10.*, 172.* and 192.168.* are rejected as a whole.
func IsLocalHost(host string) bool {
	host = strings.ToLower(strings.Trim(host, "[]"))
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	if ip.To4() != nil {
		for _, prefix := range localPrefixes {
			if strings.HasPrefix(host, prefix) {
				return true
			}
		}
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsLinkLocalUnicast()
}

// BuildEndpoint expands a transport endpoint template for target
func BuildEndpoint(template, target string) string {
	return strings.NewReplacer(
		"{url}", url.QueryEscape(target),
		"{raw}", target,
	).Replace(template)
}
