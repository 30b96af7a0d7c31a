package adocfix

import (
	"strings"
	"testing"
)

func linesOf(s string) []string {
	return strings.Split(strings.TrimPrefix(s, "\n"), "\n")
}

func TestRenumberCallouts(t *testing.T) {
	// WHAT: Markers renumber by first appearance per block; definitions
	// renumber positionally, one block's worth per block in file order.
	// WHY: Out-of-order callout labels break asciidoctor's marker/definition
	// matching.
	in := linesOf(`
----
line <2>
line <1>
----
<2> second
<1> first`)

	out, fixes := RenumberCallouts(in)

	want := linesOf(`
----
line <1>
line <2>
----
<1> second
<2> first`)
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, out[i], want[i])
		}
	}
	if len(fixes) == 0 {
		t.Error("expected fixes to be recorded")
	}
}

func TestRenumberCalloutsSequentialFromOne(t *testing.T) {
	// WHAT: Markers <a>,<b>,... become exactly <1>..<n> in original relative order.
	// WHY: Renumbering must reindex, never reorder.
	in := linesOf(`
----
alpha <7>
beta <3>
gamma <7> again
----
<7> about alpha
<3> about beta`)

	out, _ := RenumberCallouts(in)

	if out[1] != "alpha <1>" || out[2] != "beta <2>" || out[3] != "gamma <1> again" {
		t.Errorf("markers: got %q / %q / %q", out[1], out[2], out[3])
	}
	if out[5] != "<1> about alpha" || out[6] != "<2> about beta" {
		t.Errorf("definitions: got %q / %q", out[5], out[6])
	}
}

func TestRenumberCalloutsBlockScoped(t *testing.T) {
	// WHAT: Each block restarts numbering at 1 with its own mapping.
	// WHY: Callout scope is strictly per listing block.
	in := linesOf(`
----
x <5>
----
<5> first block

----
y <9>
----
<9> second block`)

	out, _ := RenumberCallouts(in)

	if out[1] != "x <1>" {
		t.Errorf("block 1 marker: %q", out[1])
	}
	if out[3] != "<1> first block" {
		t.Errorf("block 1 definition: %q", out[3])
	}
	if out[6] != "y <1>" {
		t.Errorf("block 2 marker: %q", out[6])
	}
	if out[8] != "<1> second block" {
		t.Errorf("block 2 definition: %q", out[8])
	}
}

func TestRenumberCalloutsCleanInput(t *testing.T) {
	// WHAT: Already-sequential callouts pass through with no fixes.
	// WHY: Idempotence — no defect, no record, no change.
	in := linesOf(`
----
a <1>
b <2>
----
<1> about a
<2> about b`)

	out, fixes := RenumberCallouts(in)
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("line %d changed: %q -> %q", i, in[i], out[i])
		}
	}
	if len(fixes) != 0 {
		t.Errorf("clean input produced %d fixes", len(fixes))
	}
}

func TestPlaceCalloutDefinitions(t *testing.T) {
	// WHAT: Definitions separated from their block move to directly after it,
	// followed by a blank line.
	// WHY: asciidoctor only binds definitions adjacent to the block.
	in := linesOf(`
----
cmd <1>
----
Some paragraph in between.
<1> does a thing`)

	out, fixes := PlaceCalloutDefinitions(in)

	want := linesOf(`
----
cmd <1>
----
<1> does a thing

Some paragraph in between.`)
	if len(out) != len(want) {
		t.Fatalf("got %d lines %q, want %d", len(out), out, len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, out[i], want[i])
		}
	}
	if len(fixes) != 1 {
		t.Errorf("fixes: got %d, want 1", len(fixes))
	}
}

func TestPlaceCalloutDefinitionsKeepsConditionals(t *testing.T) {
	// WHAT: ifeval::/endif:: wrappers move together with their definitions.
	// WHY: Splitting a conditional from its body corrupts the document.
	in := linesOf(`
----
cmd <1>
----
Paragraph.
ifeval::["{build}" == "downstream"]
<1> does a thing
endif::[]`)

	out, _ := PlaceCalloutDefinitions(in)

	// The conditional unit follows the block directly.
	if out[3] != `ifeval::["{build}" == "downstream"]` || out[4] != "<1> does a thing" || out[5] != "endif::[]" {
		t.Errorf("unit not moved intact: %q", out)
	}
}

func TestPlaceCalloutDefinitionsAlreadyAdjacent(t *testing.T) {
	// WHAT: Definitions already adjacent to their block stay untouched.
	// WHY: No defect means no rewrite.
	in := linesOf(`
----
cmd <1>
----
<1> does a thing`)

	out, fixes := PlaceCalloutDefinitions(in)
	if len(fixes) != 0 {
		t.Errorf("fixes on adjacent definitions: %v", fixes)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("line %d changed", i)
		}
	}
}

func TestSpaceCalloutDefinitions(t *testing.T) {
	// WHAT: A blank line is inserted after a definition run not followed by one.
	// WHY: Missing separation glues the next paragraph into the callout list.
	in := linesOf(`
----
cmd <1>
----
<1> does a thing
Next paragraph.`)

	out, fixes := SpaceCalloutDefinitions(in)

	if out[4] != "" || out[5] != "Next paragraph." {
		t.Errorf("blank line not inserted: %q", out)
	}
	if len(fixes) != 1 {
		t.Errorf("fixes: got %d, want 1", len(fixes))
	}

	// Second run: nothing left to do.
	again, fixes2 := SpaceCalloutDefinitions(out)
	if len(fixes2) != 0 || !equalLines(again, out) {
		t.Errorf("not idempotent")
	}
}
