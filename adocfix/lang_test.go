package adocfix

import "testing"

func TestGuessLanguage(t *testing.T) {
	// WHAT: Each signature family wins on representative blocks; ambiguity
	// and silence default to yaml.
	// WHY: The guess drives the synthesized [source,<lang>] designation and
	// must be deterministic.
	tests := []struct {
		name  string
		block []string
		want  string
	}{
		{
			name: "kubernetes manifest",
			block: []string{
				"apiVersion: v1",
				"kind: ConfigMap",
				"metadata:",
				"  name: example",
			},
			want: "yaml",
		},
		{
			name: "shell session",
			block: []string{
				"$ sudo systemctl restart nova",
				"$ openstack server list --all-projects",
			},
			want: "bash",
		},
		{
			name: "ini section",
			block: []string{
				"[DEFAULT]",
				"debug = true",
				"; verbose output",
			},
			want: "ini",
		},
		{
			name: "python snippet",
			block: []string{
				"import os",
				"def handler(event):",
				"    print(event)",
			},
			want: "python",
		},
		{
			name: "xml document",
			block: []string{
				`<?xml version="1.0"?>`,
				`<config xmlns="urn:example">`,
				"</config>",
			},
			want: "xml",
		},
		{
			name: "json object",
			block: []string{
				"{",
				`  "name": "value",`,
				"}",
			},
			want: "json",
		},
		{
			name:  "empty block defaults to yaml",
			block: []string{""},
			want:  "yaml",
		},
		{
			name:  "prose defaults to yaml",
			block: []string{"just some words without structure"},
			want:  "yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GuessLanguage(tt.block); got != tt.want {
				t.Errorf("GuessLanguage: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGuessLanguageDeterministic(t *testing.T) {
	// WHAT: Identical input always yields the identical guess.
	// WHY: The heuristic promises reproducibility, not correctness.
	block := []string{"key: value", "other = thing"}
	first := GuessLanguage(block)
	for i := 0; i < 10; i++ {
		if got := GuessLanguage(block); got != first {
			t.Fatalf("non-deterministic: %q then %q", first, got)
		}
	}
}
