// Package links finds the pages of a site most likely to list contact addresses.
package links

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RelevantPaths are the href substrings that mark an anchor as worth following.
var RelevantPaths = []string{"contact", "about", "team", "staff", "company", "info"}

// IsRelevant reports whether href mentions any relevant path, ignoring case.
func IsRelevant(href string) bool {
	lower := strings.ToLower(href)
	for _, p := range RelevantPaths {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Discover returns the absolute http(s) URLs of every relevant anchor in doc, resolved against
// base, de-duplicated in document order. It does not follow the links.
func Discover(doc *goquery.Document, base *url.URL) []string {
	if doc == nil || base == nil {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || !IsRelevant(href) {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}

		u := abs.String()
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	})
	return out
}

// DiscoverHTML parses an HTML document from r and runs Discover over it.
func DiscoverHTML(r io.Reader, base *url.URL) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return Discover(doc, base), nil
}
