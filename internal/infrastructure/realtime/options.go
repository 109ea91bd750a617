package realtime

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultSendBuffer   = 256
	defaultReadLimit    = 4 << 10
	defaultRateBurst    = 5
	defaultRateInterval = time.Second

	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	writeWait  = 10 * time.Second
)

// Options tunes the hub and its connections.
type Options struct {
	// AllowedOrigins lists accepted Origin values. "*" accepts any origin and
	// an empty list only accepts the request's own host.
	AllowedOrigins []string
	// RateBurst frames may arrive at once; afterwards one per RateInterval.
	RateBurst    int
	RateInterval time.Duration
	SendBuffer   int
	ReadLimit    int64
	Shards       int
}

func (o Options) withDefaults() Options {
	if o.RateBurst <= 0 {
		o.RateBurst = defaultRateBurst
	}
	if o.RateInterval <= 0 {
		o.RateInterval = defaultRateInterval
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = defaultSendBuffer
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = defaultReadLimit
	}
	if o.Shards <= 0 {
		o.Shards = defaultShards
	}
	return o
}

// originChecker builds the upgrader's CheckOrigin from the allow-list.
// Requests without an Origin header come from non-browser clients and pass.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	allowAll := false
	for _, o := range allowed {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
			continue
		}
		if n, ok := normalizeOrigin(o); ok {
			set[n] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		n, ok := normalizeOrigin(origin)
		if !ok {
			return false
		}
		if len(set) == 0 {
			u, _ := url.Parse(n)
			return strings.EqualFold(u.Host, r.Host)
		}
		_, ok = set[n]
		return ok
	}
}

func normalizeOrigin(origin string) (string, bool) {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), true
}
