package view

import (
	"github.com/bakkerme/prensa/internal/enrich"
	"github.com/bakkerme/prensa/internal/feed"
	"github.com/bakkerme/prensa/internal/filter"
)

// DisplayItem is a canonical item plus the presentation metadata derived for
// it at render time.
type DisplayItem struct {
	feed.Item
	Country        string `json:"country"`
	FlagURL        string `json:"flag_url"`
	FaviconURL     string `json:"favicon_url,omitempty"`
	DisplayTitle   string `json:"display_title"`
	DisplaySummary string `json:"display_summary"`
	When           string `json:"when,omitempty"`
	TranslateLink  string `json:"translate_link"`
}

// ErrorInfo is the failure surface handed to the presentation layer. Never a
// raw error value.
type ErrorInfo struct {
	Message       string `json:"message"`
	BackendTarget string `json:"backend_target,omitempty"`
}

// Snapshot is a consistent read of the view: the filtered, enriched items
// plus everything the presentation layer shows around them. The previous
// result's items remain present while an error is displayed.
type Snapshot struct {
	Loading bool   `json:"loading"`
	Params  Params `json:"params"`
	Source  string `json:"source"`
	Query   string `json:"query"`

	Sources          []string              `json:"sources"`
	Items            []DisplayItem         `json:"items"`
	TotalReceived    int                   `json:"total_received"`
	TotalShown       int                   `json:"total_shown"`
	TranslationStats feed.TranslationStats `json:"translation_stats"`
	FeedErrors       []feed.FeedError      `json:"feed_errors"`

	Error *ErrorInfo `json:"error,omitempty"`
}

// Snapshot derives the current visible state. Enrichment happens here, at
// read time; the committed result itself is never mutated.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	snap := Snapshot{
		Loading:    v.loading,
		Params:     v.params,
		Source:     v.source,
		Query:      v.query,
		FeedErrors: []feed.FeedError{},
	}
	var items []feed.Item
	if v.result != nil {
		items = v.result.Items
		snap.TranslationStats = v.result.TranslationStats
		snap.FeedErrors = v.result.FeedErrors
	}
	if v.lastErr != nil {
		snap.Error = &ErrorInfo{Message: v.lastErr.Message, BackendTarget: v.lastErr.BackendTarget}
	}
	source, query, rules := v.source, v.query, v.rules
	now := v.now()
	v.mu.Unlock()

	snap.TotalReceived = len(items)
	snap.Sources = filter.Sources(items)

	items = rules.Filter(items)
	visible := filter.Apply(items, source, query)
	snap.TotalShown = len(visible)

	snap.Items = make([]DisplayItem, 0, len(visible))
	for _, it := range visible {
		metaURL := enrich.SourceURL(it)
		snap.Items = append(snap.Items, DisplayItem{
			Item:           it,
			Country:        enrich.CountryCode(metaURL),
			FlagURL:        enrich.FlagURL(metaURL),
			FaviconURL:     enrich.FaviconURL(metaURL),
			DisplayTitle:   enrich.DisplayTitle(it),
			DisplaySummary: enrich.DisplaySummary(it),
			When:           enrich.FormatTime(it.PublishedAt, now),
			TranslateLink:  enrich.TranslateLinkURL(it.URL),
		})
	}
	return snap
}
