package feed

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The backend has shipped under two incompatible contracts. The current one
// returns {ok, country, items: [{url, ...}], ...}; an older deployment
// returned {articles: [{link, ...}]}. Both are resolved here, once, into the
// canonical Result; nothing downstream branches on payload shape.

type rawEnvelope struct {
	OK               *bool             `json:"ok"`
	Country          string            `json:"country"`
	Count            int               `json:"count"`
	Items            []rawItem         `json:"items"`
	Articles         []rawItem         `json:"articles"`
	TranslationStats *TranslationStats `json:"translation_stats"`
	FeedErrors       []FeedError       `json:"feed_errors"`
	Error            string            `json:"error"`
}

type rawItem struct {
	Source      string `json:"source"`
	FeedURL     string `json:"feed_url"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	URL         string `json:"url"`
	Link        string `json:"link"`
	PublishedAt string `json:"published_at"`

	TitleEN       *string `json:"title_en"`
	SummaryEN     *string `json:"summary_en"`
	TranslatedVia *string `json:"translated_via"`
}

// Decode maps a raw backend payload into a Result. It tolerates either
// payload shape and any missing optional field; individual items lacking a
// URL or title are dropped rather than failing the batch. The only error it
// returns is malformed JSON, which the adapter reports as a protocol
// mismatch.
func Decode(data []byte) (*Result, error) {
	var env rawEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	res := &Result{
		OK:         env.OK == nil || *env.OK,
		Country:    env.Country,
		FeedErrors: env.FeedErrors,
		Error:      env.Error,
	}
	if env.TranslationStats != nil {
		res.TranslationStats = *env.TranslationStats
	}
	if res.FeedErrors == nil {
		res.FeedErrors = []FeedError{}
	}

	// A failed batch carries no usable items, whatever the payload says.
	if !res.OK {
		res.Items = []Item{}
		return res, nil
	}

	raws := env.Items
	if raws == nil {
		raws = env.Articles
	}

	res.Items = make([]Item, 0, len(raws))
	for _, r := range raws {
		item, ok := r.canonical()
		if !ok {
			res.Dropped++
			continue
		}
		res.Items = append(res.Items, item)
	}
	res.Count = len(res.Items)
	return res, nil
}

func (r rawItem) canonical() (Item, bool) {
	url := strings.TrimSpace(r.URL)
	if url == "" {
		url = strings.TrimSpace(r.Link)
	}
	title := strings.TrimSpace(r.Title)
	if url == "" || title == "" {
		return Item{}, false
	}
	return Item{
		Source:        strings.TrimSpace(r.Source),
		FeedURL:       strings.TrimSpace(r.FeedURL),
		Title:         title,
		Summary:       strings.TrimSpace(r.Summary),
		URL:           url,
		PublishedAt:   strings.TrimSpace(r.PublishedAt),
		TitleEN:       r.TitleEN,
		SummaryEN:     r.SummaryEN,
		TranslatedVia: r.TranslatedVia,
	}, true
}
