package proxy

import "strings"

// RewriteSetCookie adjusts one Set-Cookie header value so backend cookies
// work as first-party cookies on the storefront host:
//
//   - Secure is dropped (plain-HTTP local setups reject it)
//   - SameSite=None becomes SameSite=Lax
//   - the backend's cookie path is rewritten to the site root
//   - Domain is dropped so the cookie binds to the current host
//
// The cookie name/value pair and every other attribute pass through
// untouched.
func RewriteSetCookie(raw, backendPath string) string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))

	for i, part := range parts {
		trimmed := strings.TrimSpace(part)
		if i == 0 {
			// name=value segment
			out = append(out, trimmed)
			continue
		}

		key, value, _ := strings.Cut(trimmed, "=")
		switch strings.ToLower(key) {
		case "secure", "domain":
			// dropped
		case "samesite":
			if strings.EqualFold(value, "none") {
				out = append(out, "SameSite=Lax")
			} else {
				out = append(out, trimmed)
			}
		case "path":
			if backendPath != "" && strings.EqualFold(value, backendPath) {
				out = append(out, "Path=/")
			} else {
				out = append(out, trimmed)
			}
		default:
			out = append(out, trimmed)
		}
	}

	return strings.Join(out, "; ")
}

// RewriteAll applies RewriteSetCookie to every header value.
func RewriteAll(raw []string, backendPath string) []string {
	if len(raw) == 0 {
		return nil
	}
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = RewriteSetCookie(v, backendPath)
	}
	return out
}
