package adocfix

import "testing"

func TestEscapeLinkBrackets(t *testing.T) {
	// WHAT: Link text containing literal brackets gets wrapped in pass:[].
	// WHY: asciidoctor cuts the link text at the first inner bracket otherwise.
	tests := []struct {
		name     string
		in       string
		want     string
		wantFix  bool
	}{
		{
			name:    "nested brackets escaped",
			in:      "See link:https://example.com/doc[the [admin] guide] for details.",
			want:    "See link:https://example.com/doc[pass:[the [admin] guide]] for details.",
			wantFix: true,
		},
		{
			name: "plain link untouched",
			in:   "See link:https://example.com/doc[the guide].",
			want: "See link:https://example.com/doc[the guide].",
		},
		{
			name: "already wrapped untouched",
			in:   "See link:https://example.com/doc[pass:[the [admin] guide]].",
			want: "See link:https://example.com/doc[pass:[the [admin] guide]].",
		},
		{
			name: "no link at all",
			in:   "Plain text with [brackets] but no link macro.",
			want: "Plain text with [brackets] but no link macro.",
		},
		{
			name:    "two links, each handled once",
			in:      "link:a[x [1]] and link:b[y [2]]",
			want:    "link:a[pass:[x [1]]] and link:b[pass:[y [2]]]",
			wantFix: true,
		},
		{
			name: "unbalanced brackets left alone",
			in:   "link:a[broken [text",
			want: "link:a[broken [text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, fixes := EscapeLinkBrackets([]string{tt.in})
			if out[0] != tt.want {
				t.Errorf("got  %q\nwant %q", out[0], tt.want)
			}
			if tt.wantFix != (len(fixes) > 0) {
				t.Errorf("fixes: got %d, wantFix=%v", len(fixes), tt.wantFix)
			}
		})
	}
}

func TestEscapeLinkBracketsIdempotent(t *testing.T) {
	// WHAT: A second run over fixed output changes nothing and reports no fixes.
	// WHY: Passes must be stable under repeated application.
	in := []string{"See link:https://e.com/x[choose [stack] name]."}
	once, _ := EscapeLinkBrackets(in)
	twice, fixes := EscapeLinkBrackets(once)
	if twice[0] != once[0] {
		t.Errorf("not idempotent: %q -> %q", once[0], twice[0])
	}
	if len(fixes) != 0 {
		t.Errorf("second run reported %d fixes, want 0", len(fixes))
	}
}
