package enrich

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/bakkerme/prensa/internal/feed"
)

// Everything in this package is a pure function over an item (or its URL).
// Malformed input degrades to an empty or unknown value; enrichment never
// aborts rendering.

var (
	tagRE        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// StripMarkup removes tag-like substrings and collapses runs of whitespace.
// It is applied to display text regardless of translation mode.
func StripMarkup(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = tagRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// DisplayTitle prefers the English translation when present, falling back to
// the original, and strips markup from whichever was chosen.
func DisplayTitle(it feed.Item) string {
	if it.TitleEN != nil && *it.TitleEN != "" {
		return StripMarkup(*it.TitleEN)
	}
	return StripMarkup(it.Title)
}

// DisplaySummary is DisplayTitle's counterpart for the summary text.
func DisplaySummary(it feed.Item) string {
	if it.SummaryEN != nil && *it.SummaryEN != "" {
		return StripMarkup(*it.SummaryEN)
	}
	return StripMarkup(it.Summary)
}

// countryRule classifies a hostname by substring. Rules are checked in table
// order and the first match wins; hostnames can satisfy more than one
// heuristic, so the order below is load-bearing.
type countryRule struct {
	code    string
	needles []string
}

var countryRules = []countryRule{
	{"br", []string{".br", "folha", "globo", "estadao", "cnnbrasil"}},
	{"py", []string{".py", "abc.com.py", "ultimahora"}},
	{"bo", []string{".bo", "eldeber", "larazon", "lostiempos", "erbol"}},
	{"ar", []string{".ar", "clarin", "cronista", "ambito", "perfil", "infobae", "lanacion"}},
	{"uy", []string{".uy", "elpais", "elobservador", "montevideo", "ladiaria", "subrayado", "teledoce"}},
}

// CountryCode classifies a source URL into a lowercase ISO country code, or
// "" when no rule matches or the URL does not parse.
func CountryCode(rawURL string) string {
	host := hostnameOf(rawURL)
	if host == "" {
		return ""
	}
	for _, rule := range countryRules {
		for _, needle := range rule.needles {
			if strings.Contains(host, needle) {
				return rule.code
			}
		}
	}
	return ""
}

const flagBaseURL = "https://flagcdn.com/48x36"

// FlagURL returns a flag image for the item's classified country, or the UN
// flag for an unknown classification.
func FlagURL(rawURL string) string {
	code := CountryCode(rawURL)
	if code == "" {
		code = "un"
	}
	return fmt.Sprintf("%s/%s.png", flagBaseURL, code)
}

// FaviconURL returns a favicon reference for the item's host, or "" when the
// URL has no usable hostname.
func FaviconURL(rawURL string) string {
	host := hostnameOf(rawURL)
	if host == "" {
		return ""
	}
	return fmt.Sprintf("https://www.google.com/s2/favicons?domain=%s&sz=32", host)
}

// TranslateLinkURL builds a read-in-English link for an article.
func TranslateLinkURL(rawURL string) string {
	return "https://translate.google.com/translate?sl=auto&tl=en&u=" + url.QueryEscape(rawURL)
}

// SourceURL picks the URL used for metadata derivation: the feed URL when
// present, the article URL otherwise.
func SourceURL(it feed.Item) string {
	if it.FeedURL != "" {
		return it.FeedURL
	}
	return it.URL
}

// FormatTime renders a publication instant relative to now, in now's zone:
// "Today • 15:04" when the instant falls on the viewer's current date,
// "Jan 2 • 15:04" otherwise. Missing or unparsable instants render as "".
func FormatTime(iso string, now time.Time) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return ""
	}
	local := t.In(now.Location())
	clock := local.Format("15:04")
	ny, nm, nd := now.Date()
	ly, lm, ld := local.Date()
	if ny == ly && nm == lm && nd == ld {
		return "Today • " + clock
	}
	return local.Format("Jan 2") + " • " + clock
}

func hostnameOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
