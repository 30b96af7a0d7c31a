package docbookfix

import (
	"log/slog"
	"strings"
	"testing"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// WHAT: placeholder escaping hits key=value bodies and nothing else.
// WHY: real markup must survive; only verbatim <key=value> text breaks the parser.
func TestEscapeAnglePlaceholders(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		hits int
	}{
		{
			name: "simple placeholder",
			in:   "set <region=us-east> before running",
			want: "set &lt;region=us-east&gt; before running",
			hits: 1,
		},
		{
			name: "hyphenated key",
			in:   "node <controller-0=down> is drained",
			want: "node &lt;controller-0=down&gt; is drained",
			hits: 1,
		},
		{
			name: "real tag with attribute untouched",
			in:   `<entry morerows="1">x</entry>`,
			want: `<entry morerows="1">x</entry>`,
			hits: 0,
		},
		{
			name: "spaced body untouched",
			in:   "<a=b c>",
			want: "<a=b c>",
			hits: 0,
		},
		{
			name: "plain angle text untouched",
			in:   "<simpara>use &lt;name&gt;</simpara>",
			want: "<simpara>use &lt;name&gt;</simpara>",
			hits: 0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, fixes := EscapeAnglePlaceholders(tc.in, discard())
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
			if len(fixes) != tc.hits {
				t.Errorf("got %d fixes, want %d", len(fixes), tc.hits)
			}
		})
	}
}

// WHAT: named entities become numeric references and lost semicolons come back.
// WHY: the XML parser rejects HTML-named entities outright.
func TestReplaceEntities(t *testing.T) {
	in := "<simpara>a&nbsp;b &verbar; c&nbsp d</simpara>"
	got, fixes := ReplaceEntities(in, discard())

	want := "<simpara>a&#160;b &#124; c&#160; d</simpara>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if len(fixes) == 0 {
		t.Fatal("expected fixes to be reported")
	}

	// Second run must be a fixed point.
	again, fixes2 := ReplaceEntities(got, discard())
	if again != got || len(fixes2) != 0 {
		t.Errorf("not idempotent: %q (%d fixes)", again, len(fixes2))
	}
}

// WHAT: standard XML entities are never rewritten.
// WHY: &amp; &lt; &gt; are valid as-is; touching them corrupts the document.
func TestReplaceEntitiesKeepsStandardOnes(t *testing.T) {
	in := "<simpara>&amp; &lt; &gt; &quot;</simpara>"
	got, _ := ReplaceEntities(in, discard())
	if got != in {
		t.Errorf("standard entities changed: %q", got)
	}
}

// WHAT: a cell whose only child is one paragraph gets that paragraph unwrapped.
// WHY: pandoc treats a lone para inside an entry as block content and refuses
// to emit a pipe table for it.
func TestFlattenCellParagraphs(t *testing.T) {
	in := `<table><tgroup cols="1"><tbody><row><entry><simpara>hello <code>x</code></simpara></entry></row></tbody></tgroup></table>`
	got, fixes := FlattenCellParagraphs(in, discard())

	if !strings.Contains(got, "<entry>hello <code>x</code></entry>") {
		t.Errorf("paragraph not flattened: %q", got)
	}
	if len(fixes) != 1 {
		t.Errorf("got %d fixes, want 1", len(fixes))
	}
}

// WHAT: cells with more than one block child keep their structure.
// WHY: unwrapping is only safe when the paragraph is the cell's sole content;
// lists inside cells must stay nested.
func TestFlattenCellParagraphsSkipsStructuredCells(t *testing.T) {
	in := `<row><entry><simpara>intro</simpara><itemizedlist><listitem><simpara>a</simpara></listitem></itemizedlist></entry></row>`
	got, fixes := FlattenCellParagraphs(in, discard())
	if got != in {
		t.Errorf("structured cell changed: %q", got)
	}
	if len(fixes) != 0 {
		t.Errorf("got %d fixes, want 0", len(fixes))
	}
}

// WHAT: a list title moves into a formalpara sibling placed before the list.
// WHY: pandoc drops list titles when converting to Markdown.
func TestHoistListTitles(t *testing.T) {
	in := `<section><itemizedlist><title>Steps</title><listitem><simpara>a</simpara></listitem></itemizedlist></section>`
	got, fixes := HoistListTitles(in, discard())

	if strings.Contains(got, "<itemizedlist><title>") {
		t.Errorf("title still inside list: %q", got)
	}
	wantOrder := "<formalpara><title>Steps</title>"
	idx := strings.Index(got, wantOrder)
	if idx < 0 {
		t.Fatalf("formalpara missing: %q", got)
	}
	if idx > strings.Index(got, "<itemizedlist>") {
		t.Errorf("formalpara not before the list: %q", got)
	}
	if len(fixes) != 1 {
		t.Errorf("got %d fixes, want 1", len(fixes))
	}

	// A second run finds no title left to hoist.
	again, fixes2 := HoistListTitles(got, discard())
	if again != got || len(fixes2) != 0 {
		t.Errorf("not idempotent: %q (%d fixes)", again, len(fixes2))
	}
}

// WHAT: unparseable input comes back byte-identical from the tree passes.
// WHY: a repair step must never make a broken document worse.
func TestTreePassesLeaveBrokenXMLAlone(t *testing.T) {
	in := "<section><entry>unclosed"
	for name, pass := range map[string]func(string, *slog.Logger) (string, []Fix){
		"flatten": FlattenCellParagraphs,
		"hoist":   HoistListTitles,
	} {
		got, fixes := pass(in, discard())
		if got != in {
			t.Errorf("%s: broken input changed: %q", name, got)
		}
		if len(fixes) != 0 {
			t.Errorf("%s: got %d fixes, want 0", name, len(fixes))
		}
	}
}

// WHAT: the full pipeline repairs a document carrying all four defect kinds.
// WHY: passes run in a fixed order; the text passes must make the document
// parseable before the tree passes run.
func TestRepairPipeline(t *testing.T) {
	in := `<section><simpara>set <region=us-east> and&nbsp;wait</simpara>` +
		`<itemizedlist><title>Checks</title><listitem><simpara>ok</simpara></listitem></itemizedlist>` +
		`<table><tgroup cols="1"><tbody><row><entry><simpara>v</simpara></entry></row></tbody></tgroup></table></section>`

	got, fixes := Repair(in, discard())

	for _, want := range []string{
		"&lt;region=us-east&gt;",
		"and wait", // numeric reference decoded on reserialization
		"<entry>v</entry>",
		"<formalpara><title>Checks</title>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
	if len(fixes) < 4 {
		t.Errorf("got %d fixes, want at least 4", len(fixes))
	}

	again, fixes2 := Repair(got, discard())
	if again != got || len(fixes2) != 0 {
		t.Errorf("not idempotent: %d residual fixes", len(fixes2))
	}
}
