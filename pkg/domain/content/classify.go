package content

import (
	"net/url"
	"regexp"
	"strings"
)

// hostPattern matches a bare domain such as "example.com" or
// "sub.example.co.uk:8080".
var hostPattern = regexp.MustCompile(
	`^([a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(:\d{1,5})?$`,
)

// Classify decides whether a payload is a link or plain text. It is total
// and deterministic: anything that is not a single-line absolute http(s)
// URL or a bare host-like string is text.
func Classify(payload string) Kind {
	s := strings.TrimSpace(payload)
	if s == "" || strings.ContainsAny(s, " \t\n\r") {
		return KindText
	}

	if u, err := url.Parse(s); err == nil && u.Host != "" {
		if u.Scheme == "http" || u.Scheme == "https" {
			return KindLink
		}
		return KindText
	}

	host := s
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if hostPattern.MatchString(host) {
		return KindLink
	}
	return KindText
}
