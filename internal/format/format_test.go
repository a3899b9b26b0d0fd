package format

import (
	"strings"
	"testing"
	"time"
)

func TestNumberZero(t *testing.T) {
	if got := Number(0, 2); got != "0" {
		t.Errorf("Number(0, 2) = %q, want \"0\"", got)
	}
}

func TestNumberSmallValues(t *testing.T) {
	if got := Number(2.5, 2); got != "2.50" {
		t.Errorf("Number(2.5, 2) = %q, want \"2.50\"", got)
	}
	if got := Number(999.994, 2); got != "999.99" {
		t.Errorf("Number(999.994, 2) = %q, want \"999.99\"", got)
	}
	if got := Number(-12.3, 1); got != "-12.3" {
		t.Errorf("Number(-12.3, 1) = %q, want \"-12.3\"", got)
	}
}

func TestNumberGrouping(t *testing.T) {
	if got := Number(1234567.891, 2); got != "1,234,567.89" {
		t.Errorf("Number(1234567.891, 2) = %q, want \"1,234,567.89\"", got)
	}
	if got := Number(1000, 0); got != "1,000" {
		t.Errorf("Number(1000, 0) = %q, want \"1,000\"", got)
	}
	if got := Number(-45000, 2); got != "-45,000.00" {
		t.Errorf("Number(-45000, 2) = %q, want \"-45,000.00\"", got)
	}
	// Rounding up across 1000 still groups.
	if got := Number(999.996, 2); got != "1,000.00" {
		t.Errorf("Number(999.996, 2) = %q, want \"1,000.00\"", got)
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-49 * time.Hour), "2d ago"},
	}
	for _, c := range cases {
		if got := RelativeTime(c.t, now); got != c.want {
			t.Errorf("RelativeTime(%v) = %q, want %q", c.t, got, c.want)
		}
	}
}

func TestCurrency(t *testing.T) {
	if got := Currency("INR"); got != "₹" {
		t.Errorf("Currency(INR) = %q", got)
	}
	if got := Currency("usd"); got != "$" {
		t.Errorf("Currency(usd) = %q", got)
	}
	if got := Currency("XYZ"); got != "XYZ " {
		t.Errorf("Currency(XYZ) = %q", got)
	}
}

func TestEscapeTextStripsControl(t *testing.T) {
	in := "hi \x1b[31mred\x1b[0m\x07 there"
	got := EscapeText(in)
	if got != "hi red there" {
		t.Errorf("EscapeText = %q", got)
	}
}

func TestParseMarkdownBlocks(t *testing.T) {
	text := "# Heading\n\nFirst paragraph with **bold** and *italic*.\n\n- item one\n- item two\n\nSecond paragraph."
	nodes := ParseMarkdown(text)
	if len(nodes) != 4 {
		t.Fatalf("got %d nodes, want 4", len(nodes))
	}
	if nodes[0].Kind != NodeHeading || nodes[0].Level != 1 {
		t.Errorf("node 0 = %+v, want level-1 heading", nodes[0])
	}
	if nodes[1].Kind != NodeParagraph {
		t.Errorf("node 1 kind = %v, want paragraph", nodes[1].Kind)
	}
	var (
		sawBold   bool
		sawItalic bool
	)
	for _, sp := range nodes[1].Spans {
		if sp.Bold && sp.Text == "bold" {
			sawBold = true
		}
		if sp.Italic && sp.Text == "italic" {
			sawItalic = true
		}
	}
	if !sawBold || !sawItalic {
		t.Errorf("emphasis spans missing: %+v", nodes[1].Spans)
	}
	if nodes[2].Kind != NodeList || len(nodes[2].Items) != 2 {
		t.Errorf("node 2 = %+v, want 2-item list", nodes[2])
	}
	if nodes[3].Kind != NodeParagraph {
		t.Errorf("node 3 kind = %v, want paragraph", nodes[3].Kind)
	}
}

func TestParseMarkdownNoLinksOrTables(t *testing.T) {
	nodes := ParseMarkdown("| a | b |\n[link](http://x)")
	for _, n := range nodes {
		if n.Kind != NodeParagraph {
			t.Errorf("unsupported syntax produced kind %v, want plain paragraph", n.Kind)
		}
	}
}

func TestRenderNodesWraps(t *testing.T) {
	nodes := ParseMarkdown("one two three four five six seven eight nine ten")
	out := RenderNodes(nodes, 20)
	for _, line := range strings.Split(out, "\n") {
		if len([]rune(line)) > 20 {
			t.Errorf("line exceeds width: %q", line)
		}
	}
}

func TestRenderNodesWrapsListItems(t *testing.T) {
	nodes := ParseMarkdown("- a long bullet item that must not overflow the modal frame at all")
	out := RenderNodes(nodes, 20)
	lines := strings.Split(out, "\n")
	if len(lines) < 2 {
		t.Fatalf("long bullet did not wrap: %q", out)
	}
	for _, line := range lines {
		if len([]rune(line)) > 20 {
			t.Errorf("line exceeds width: %q", line)
		}
	}
	for _, line := range lines[1:] {
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("continuation line not indented: %q", line)
		}
	}
}
