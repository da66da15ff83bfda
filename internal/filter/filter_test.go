package filter

import (
	"reflect"
	"testing"

	"github.com/bakkerme/prensa/internal/feed"
)

func item(source, title, summary, url string) feed.Item {
	return feed.Item{Source: source, Title: title, Summary: summary, URL: url}
}

func TestSourcesDistinctSorted(t *testing.T) {
	items := []feed.Item{
		item("clarín", "a", "", "http://1"),
		item("ABC Color", "b", "", "http://2"),
		item("clarín", "c", "", "http://3"),
		item("", "d", "", "http://4"),
		item("El País", "e", "", "http://5"),
	}
	got := Sources(items)
	want := []string{"ABC Color", "clarín", "El País"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sources = %v, want %v", got, want)
	}
}

func TestApplyComposesSourceAndSearch(t *testing.T) {
	items := []feed.Item{
		item("A", "Foo Bar", "", "http://1"),
		item("A", "Baz", "", "http://2"),
		item("B", "Foo Bar", "", "http://3"),
		item("B", "Baz", "", "http://4"),
	}

	got := Apply(items, "A", "foo")
	if len(got) != 1 || got[0].URL != "http://1" {
		t.Fatalf("Apply = %+v, want only the A/Foo item", got)
	}
}

func TestApplyAllWildcardAndEmptyQuery(t *testing.T) {
	items := []feed.Item{
		item("A", "Foo", "", "http://1"),
		item("B", "Bar", "", "http://2"),
	}
	if got := Apply(items, SourceAll, ""); len(got) != 2 {
		t.Errorf("wildcard filter should pass everything, got %d items", len(got))
	}
	if got := Apply(items, "", ""); len(got) != 2 {
		t.Errorf("empty source should pass everything, got %d items", len(got))
	}
}

func TestApplySearchesTranslatedAndStrippedText(t *testing.T) {
	en := "<b>Inflation</b> slows down"
	items := []feed.Item{
		{Source: "Clarín", Title: "La inflación se desacelera", TitleEN: &en, URL: "http://1"},
		{Source: "Clarín", Title: "Otra cosa", URL: "http://2"},
	}
	got := Apply(items, SourceAll, "inflation")
	if len(got) != 1 || got[0].URL != "http://1" {
		t.Fatalf("expected search to hit the stripped translated title, got %+v", got)
	}
}

func TestApplySearchesSourceName(t *testing.T) {
	items := []feed.Item{
		item("Montevideo Portal", "Foo", "", "http://1"),
		item("Clarín", "Bar", "", "http://2"),
	}
	got := Apply(items, SourceAll, "montevideo")
	if len(got) != 1 || got[0].URL != "http://1" {
		t.Fatalf("expected search to match the source name, got %+v", got)
	}
}

func TestApplyEmptyResultIsValid(t *testing.T) {
	items := []feed.Item{item("A", "Foo", "", "http://1")}
	if got := Apply(items, "B", ""); len(got) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
}

func TestRuleDrop(t *testing.T) {
	rule, err := NewRule("no-sports", `summary contains "fútbol"`, "drop")
	if err != nil {
		t.Fatalf("compile rule: %v", err)
	}
	items := []feed.Item{
		item("A", "Partido", "fútbol en vivo", "http://1"),
		item("A", "Economía", "inflación", "http://2"),
	}
	got := rule.Filter(items)
	if len(got) != 1 || got[0].URL != "http://2" {
		t.Fatalf("rule.Filter = %+v", got)
	}
}

func TestRulePassKeepsOnlyMatches(t *testing.T) {
	rule, err := NewRule("uruguay-only", `country == "uy"`, "pass")
	if err != nil {
		t.Fatalf("compile rule: %v", err)
	}
	items := []feed.Item{
		item("El País", "a", "", "https://www.elpais.com.uy/1"),
		item("Clarín", "b", "", "https://www.clarin.com/2"),
	}
	got := rule.Filter(items)
	if len(got) != 1 || got[0].Source != "El País" {
		t.Fatalf("rule.Filter = %+v", got)
	}
}

func TestRuleValidation(t *testing.T) {
	if _, err := NewRule("", `true`, "drop"); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := NewRule("x", `true`, "maybe"); err == nil {
		t.Error("expected error for bad result")
	}
	if _, err := NewRule("x", `title ==`, "drop"); err == nil {
		t.Error("expected error for bad expression")
	}
}
