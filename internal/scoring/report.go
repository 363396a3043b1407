package scoring

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gastownhall/trustscore/internal/style"
)

// RenderReport writes a human-readable score report. Missing sections render
// as empty placeholders; a nil report renders as "no report".
func RenderReport(w io.Writer, r *ScoreReport) error {
	var b strings.Builder
	if r == nil {
		b.WriteString(style.Dim.Render("no report") + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "%s\n", style.Bold.Render("Scores for "+orDash(r.Name())))
	if r.Handle != "" && r.DID != "" {
		fmt.Fprintf(&b, "  did:      %s\n", r.DID)
	}
	if r.UpdatedAt > 0 {
		fmt.Fprintf(&b, "  updated:  %s\n", time.UnixMilli(r.UpdatedAt).UTC().Format(time.RFC3339))
	}

	for _, name := range FacetNames(r) {
		fmt.Fprintf(&b, "\n%s\n", style.Bold.Render(facetTitle(name)))
		b.WriteString(renderFacet(r.Facets[name]))
	}

	fmt.Fprintf(&b, "\n%s %d%%\n", style.Bold.Render("Bot probability:"), BotPercent(r))

	fmt.Fprintf(&b, "\n%s\n", style.Bold.Render("Domain expertise"))
	if len(r.Expertise) == 0 {
		b.WriteString(style.Dim.Render("  (none)") + "\n")
	} else {
		tbl := style.NewTable(
			style.Column{Name: "DOMAIN", Width: 24},
			style.Column{Name: "SCORE", Width: 8, Align: style.AlignRight},
		)
		for _, e := range r.Expertise {
			tbl.AddRow(orDash(e.Domain), formatScore(e.Score))
		}
		b.WriteString(tbl.Render())
	}

	fmt.Fprintf(&b, "\n%s\n", style.Bold.Render("Evidence"))
	b.WriteString(indent(renderEvidence(r.Evidence), "  "))
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

// FacetNames returns accuracy and civility first, then any other facets
// present in the report in name order.
func FacetNames(r *ScoreReport) []string {
	names := []string{FacetAccuracy, FacetCivility}
	var extra []string
	for name := range r.Facets {
		if name != FacetAccuracy && name != FacetCivility {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// BotPercent returns the bot probability as a whole percentage in [0,100];
// an absent value counts as zero.
func BotPercent(r *ScoreReport) int {
	if r == nil || r.BotProb == nil || math.IsNaN(*r.BotProb) {
		return 0
	}
	p := math.Round(*r.BotProb * 100)
	return int(math.Max(0, math.Min(100, p)))
}

func renderFacet(f *Facet) string {
	if f == nil {
		return style.Dim.Render("  (no data)") + "\n"
	}
	return fmt.Sprintf("  evidence:  +%s / -%s\n  opinion:   belief %.2f  disbelief %.2f  uncertainty %.2f\n",
		formatScore(f.Alpha), formatScore(f.Beta), f.B, f.D, f.U)
}

func renderEvidence(ev []json.RawMessage) string {
	if len(ev) == 0 {
		return "[]"
	}
	out, err := json.MarshalIndent(ev, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(out)
}

func facetTitle(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

func formatScore(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
