package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"unicode"
)

var trackingParams = map[string]struct{}{
	"fbclid":  {},
	"gclid":   {},
	"mc_cid":  {},
	"mc_eid":  {},
	"ref":     {},
	"ref_src": {},
}

// NormalizeURL lower-cases the URL, removes tracking parameters and the fragment, sorts
// the remaining query and trims trailing slashes and a leading "www.".
func NormalizeURL(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" {
		return strings.TrimRight(trimmed, "/")
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.Host = strings.TrimPrefix(parsed.Host, "www.")

	query := parsed.Query()
	for key := range query {
		if _, ok := trackingParams[key]; ok || strings.HasPrefix(key, "utm_") {
			query.Del(key)
		}
	}
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var qb strings.Builder
	for _, key := range keys {
		values := query[key]
		sort.Strings(values)
		for _, v := range values {
			if qb.Len() > 0 {
				qb.WriteByte('&')
			}
			qb.WriteString(url.QueryEscape(key))
			qb.WriteByte('=')
			qb.WriteString(url.QueryEscape(v))
		}
	}
	parsed.RawQuery = qb.String()
	parsed.ForceQuery = false
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawPath = ""

	return parsed.String()
}

// Fingerprint hashes the normalized title together with the source.
func Fingerprint(title, source string) string {
	norm := normalizeTitle(title)
	if norm == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(norm + "|" + strings.ToLower(strings.TrimSpace(source))))
	return hex.EncodeToString(sum[:])
}

func normalizeTitle(title string) string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}
