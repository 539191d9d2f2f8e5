package middleware

import (
	"net"
	"net/http"
)

// TrustedCIDR rejects requests whose X-Real-IP falls outside the given
// subnet. An empty subnet disables the check. An unparsable subnet is a
// configuration error and fails server startup.
func TrustedCIDR(cidrs string) func(http.Handler) http.Handler {
	var ipnet *net.IPNet
	if cidrs != "" {
		_, n, err := net.ParseCIDR(cidrs)
		if err != nil {
			panic("invalid trusted_subnet: " + err.Error())
		}
		ipnet = n
	}

	return func(next http.Handler) http.Handler {
		if ipnet == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			xrip := r.Header.Get("X-Real-IP")
			ip := net.ParseIP(xrip)
			if ip == nil || !ipnet.Contains(ip) {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
