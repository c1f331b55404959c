package markdown

import (
	"strings"
	"testing"
)

func TestFrontmatterRoundTripPreservesBody(t *testing.T) {
	t.Parallel()
	note, err := RenderFrontmatter(map[string]any{"date": "2026-03-01", "total_seconds": 3600}, "my notes\n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	meta, body, err := SplitFrontmatter(note)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if meta["date"] != "2026-03-01" || meta["total_seconds"] != 3600 {
		t.Fatalf("unexpected meta %v", meta)
	}
	if strings.TrimSpace(body) != "my notes" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestSplitFrontmatterRejectsUnclosed(t *testing.T) {
	t.Parallel()
	if _, _, err := SplitFrontmatter("---\ndate: x\n"); err == nil {
		t.Fatal("expected error for unclosed frontmatter")
	}
}

func TestBlockReplaceKeepsUserText(t *testing.T) {
	t.Parallel()
	block := NewBlock("sessions")
	body := block.Replace("reflection\n", "- first")
	body = block.Replace(body, "- second")
	if strings.Contains(body, "- first") || !strings.Contains(body, "- second") {
		t.Fatalf("block not replaced: %q", body)
	}
	if !strings.HasPrefix(body, "reflection\n") {
		t.Fatalf("user text lost: %q", body)
	}
	if strings.Count(body, block.Start) != 1 {
		t.Fatalf("expected a single block: %q", body)
	}
}

func TestMergePrefersGenerated(t *testing.T) {
	t.Parallel()
	out := Merge(map[string]any{"mood": "good", "total": 1}, map[string]any{"total": 2})
	if out["mood"] != "good" || out["total"] != 2 {
		t.Fatalf("unexpected merge %v", out)
	}
}
