package feed

// Item is one aggregated headline in canonical form, independent of which
// payload shape the backend returned it in. URL is the item's identity within
// a batch.
type Item struct {
	Source      string `json:"source"`
	FeedURL     string `json:"feed_url,omitempty"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at,omitempty"`

	TitleEN   *string `json:"title_en,omitempty"`
	SummaryEN *string `json:"summary_en,omitempty"`

	// TranslatedVia records which mechanism supplied the translation
	// (cache, openai, skipped). Informational only.
	TranslatedVia *string `json:"translated_via,omitempty"`
}

// TranslationStats counts translation work the backend performed for a batch.
// All counts default to zero when the backend omits them.
type TranslationStats struct {
	Cache   int `json:"cache"`
	OpenAI  int `json:"openai"`
	Error   int `json:"error"`
	Skipped int `json:"skipped"`
}

// FeedError is a per-upstream-feed failure that did not fail the whole batch.
type FeedError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Result is the canonical normalized response for one fetch.
type Result struct {
	OK               bool             `json:"ok"`
	Country          string           `json:"country"`
	Count            int              `json:"count"`
	Items            []Item           `json:"items"`
	TranslationStats TranslationStats `json:"translation_stats"`
	FeedErrors       []FeedError      `json:"feed_errors"`
	Error            string           `json:"error,omitempty"`

	// Dropped counts raw items discarded during normalization because they
	// were missing required fields. Not part of the wire contract.
	Dropped int `json:"-"`
}
