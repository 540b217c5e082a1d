package guard

import (
	"net/url"
	"strings"
)

// OriginParam is the query parameter that carries the captured origin on the login path.
const OriginParam = "next"

// LoginURL returns loginPath with origin attached when origin is safe.
func LoginURL(loginPath, origin string) string {
	origin = SafeOrigin(origin, loginPath)
	if origin == "" {
		return loginPath
	}
	return loginPath + "?" + url.Values{OriginParam: {origin}}.Encode()
}

// OriginFromQuery reads a previously captured origin back from the login URL query.
func OriginFromQuery(q url.Values, loginPath string) string {
	return SafeOrigin(q.Get(OriginParam), loginPath)
}

// SafeOrigin returns origin if it is a local path other than the login path, otherwise "".
// Absolute URLs and scheme-relative paths are rejected to prevent open redirects.
func SafeOrigin(origin, loginPath string) string {
	origin = strings.TrimSpace(origin)
	if !isLocalPath(origin) {
		return ""
	}
	if pathOf(origin) == pathOf(loginPath) {
		return ""
	}
	return origin
}

func isLocalPath(p string) bool {
	if p == "" || p[0] != '/' {
		return false
	}
	if strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return false
	}
	if strings.ContainsAny(p, "\r\n\t") {
		return false
	}
	u, err := url.Parse(p)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

func pathOf(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}
