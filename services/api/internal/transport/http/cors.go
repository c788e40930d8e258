package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	corsAllowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowedHeaders = "Content-Type, " + userHeader
)

// CORSPolicy lists the pro portal origins allowed to call the API. "*"
// allows any origin. MaxAge is sent on preflights when positive.
type CORSPolicy struct {
	Origins []string
	MaxAge  time.Duration
}

type corsRules struct {
	any     bool
	origins map[string]struct{}
	maxAge  string
}

func (p CORSPolicy) compile() corsRules {
	rules := corsRules{origins: make(map[string]struct{}, len(p.Origins))}
	for _, origin := range p.Origins {
		switch origin = strings.TrimSpace(origin); origin {
		case "":
		case "*":
			rules.any = true
		default:
			rules.origins[strings.TrimSuffix(origin, "/")] = struct{}{}
		}
	}
	if secs := int64(p.MaxAge / time.Second); secs > 0 {
		rules.maxAge = strconv.FormatInt(secs, 10)
	}
	return rules
}

func (r corsRules) allows(origin string) bool {
	if r.any {
		return true
	}
	_, ok := r.origins[origin]
	return ok
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}

// CORS answers preflights and adds the allow headers for origins of the
// policy. Requests from other origins pass through untouched, except
// preflights which are refused.
func CORS(policy CORSPolicy, next http.Handler) http.Handler {
	rules := policy.compile()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !rules.allows(origin) {
			if isPreflight(r) {
				writeError(w, http.StatusForbidden, codeForbidden, "origin not allowed")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		if rules.any {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}
		if !isPreflight(r) {
			next.ServeHTTP(w, r)
			return
		}

		h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
		h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
		if rules.maxAge != "" {
			h.Set("Access-Control-Max-Age", rules.maxAge)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
