package metadata

import (
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"gatehouse/pkg/requestcontext"
)

// ClientMetadata extracts the client IP, User-Agent and a short terminal
// description from the request and adds them to the context. Audit events
// pick these up so a gate scan can be traced to the tablet that made it.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawUA := r.Header.Get("User-Agent")
		ctx := requestcontext.WithClientMetadata(r.Context(),
			ClientIPFromRequest(r),
			rawUA,
			DescribeTerminal(rawUA),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DescribeTerminal turns a User-Agent into "Browser on OS". Unknown agents
// return the empty string.
func DescribeTerminal(rawUA string) string {
	if strings.TrimSpace(rawUA) == "" {
		return ""
	}
	ua := useragent.New(rawUA)
	if ua.Bot() {
		return "bot"
	}
	browser, _ := ua.Browser()
	os := ua.OS()
	switch {
	case browser != "" && os != "":
		return browser + " on " + os
	case browser != "":
		return browser
	default:
		return os
	}
}

// ClientIPFromRequest prefers the first X-Forwarded-For hop, then X-Real-IP,
// then the peer address. Gate tablets usually sit behind the society's proxy.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
