package middleware

import (
	"context"
	"net/http"
	"strings"
)

type localeContextKey struct{}
type countryContextKey struct{}

var (
	LocaleKey  = localeContextKey{}
	CountryKey = countryContextKey{}
)

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// supportedLocales mirrors the banner catalog. Tags outside this set are
// ignored during negotiation instead of being coerced to English early,
// so country inference still gets a say for e.g. a French browser.
var supportedLocales = map[string]struct{}{
	"en": {},
	"id": {},
}

// I18N negotiates the response locale and stores it, with the visitor
// country, on the request context. Precedence: explicit X-Locale header,
// Accept-Language, visitor country, configured default.
func I18N(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			country := ResolveCountry(r, lookup)
			locale := detectLocale(r, defaultLocale, country)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			if country != "" {
				ctx = context.WithValue(ctx, CountryKey, strings.ToUpper(country))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback string, country string) string {
	if v := supportedLocale(r.Header.Get("X-Locale")); v != "" {
		return v
	}
	for _, tag := range headerTags(r.Header.Get("Accept-Language")) {
		if v := supportedLocale(tag); v != "" {
			return v
		}
	}
	if strings.EqualFold(country, "ID") {
		return "id"
	}
	if country != "" {
		return "en"
	}
	if v := supportedLocale(fallback); v != "" {
		return v
	}
	return "en"
}

// supportedLocale reduces a language tag to its primary subtag and reports
// it only when the banner catalog covers it.
func supportedLocale(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if idx := strings.IndexAny(tag, "-_"); idx >= 0 {
		tag = tag[:idx]
	}
	if _, ok := supportedLocales[tag]; ok {
		return tag
	}
	return ""
}

// headerTags splits an Accept-Language header into bare tags, dropping
// q-weights. Order of appearance stands in for preference.
func headerTags(header string) []string {
	if header == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(strings.Split(part, ";")[0])
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return "en"
}

// CountryFromContext returns the ISO country code stored in the request context.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}

// ResolveCountry resolves a best-effort ISO country code for the request:
// proxy hint headers first, then region subtags of the language headers,
// then the GeoIP lookup when one is configured.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	for _, key := range []string{"X-Country-Code", "X-IP-Country", "CF-IPCountry", "X-Appengine-Country"} {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return strings.ToUpper(val)
		}
	}
	for _, header := range []string{r.Header.Get("X-Locale"), r.Header.Get("Accept-Language")} {
		for _, tag := range headerTags(header) {
			if region := regionSubtag(tag); region != "" {
				return region
			}
		}
	}
	// An Indonesian language preference without a region still implies ID.
	if supportedLocale(r.Header.Get("X-Locale")) == "id" {
		return "ID"
	}
	for _, tag := range headerTags(r.Header.Get("Accept-Language")) {
		if supportedLocale(tag) == "id" {
			return "ID"
		}
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}

func regionSubtag(tag string) string {
	if idx := strings.IndexAny(tag, "-_"); idx > 0 && idx < len(tag)-1 {
		return strings.ToUpper(tag[idx+1:])
	}
	return ""
}
