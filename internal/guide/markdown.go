package guide

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/p-n-ai/statsmd/internal/catalog"
)

const title = "StatsMD Study Guide"

// Markdown renders the guide as a Markdown document.
func Markdown(cat *catalog.Catalog) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("## Statistical Tests\n\n")
	for _, t := range cat.Tests() {
		fmt.Fprintf(&b, "### %s\n\n", t.DisplayName)
		fmt.Fprintf(&b, "- **Category:** %s\n", t.Category)
		fmt.Fprintf(&b, "- **Outcome types:** %s\n", join(t.ApplicableTo.OutcomeTypes))
		fmt.Fprintf(&b, "- **Comparisons:** %s\n", join(t.ApplicableTo.ComparisonTypes))
		fmt.Fprintf(&b, "- **Study designs:** %s\n", join(t.ApplicableTo.StudyDesigns))
		if names := assumptionNames(cat, t.Assumptions); len(names) > 0 {
			fmt.Fprintf(&b, "- **Assumptions:** %s\n", strings.Join(names, ", "))
		}
		if names := testNames(cat, t.Alternatives); len(names) > 0 {
			fmt.Fprintf(&b, "- **Alternatives:** %s\n", strings.Join(names, ", "))
		}
		if t.Interpretation.ClinicalRelevance != "" {
			fmt.Fprintf(&b, "\n%s\n", t.Interpretation.ClinicalRelevance)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Assumptions\n\n")
	for _, a := range cat.Assumptions() {
		fmt.Fprintf(&b, "### %s\n\n%s\n\n", a.Name, a.Description)
		if len(a.HowToCheck) > 0 {
			b.WriteString("How to check:\n\n")
			bullets(&b, a.HowToCheck)
		}
		if a.WhatIfViolated != "" {
			fmt.Fprintf(&b, "If violated: %s\n\n", a.WhatIfViolated)
		}
		if len(a.Remedies) > 0 {
			b.WriteString("Remedies:\n\n")
			bullets(&b, a.Remedies)
		}
	}

	b.WriteString("## Study Designs\n\n")
	b.WriteString("| Design | Temporality | Intervention | Randomization | Evidence |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, d := range cat.StudyDesigns() {
		c := d.Characteristics
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			d.Name, c.Temporality, yesNo(c.Intervention), yesNo(c.Randomization), d.StrengthOfEvidence)
	}
	b.WriteString("\n")

	b.WriteString("## Regression Models\n\n")
	for _, m := range cat.RegressionModels() {
		fmt.Fprintf(&b, "### %s\n\n", m.Name)
		fmt.Fprintf(&b, "- **Outcome:** %s\n- **Equation:** `%s`\n\n%s\n\n", m.OutcomeType, m.Equation, m.WhenToUse)
	}

	b.WriteString("## Glossary\n\n")
	for _, g := range cat.Glossary() {
		fmt.Fprintf(&b, "**%s** (%s): %s\n\n", g.Term, g.Category, g.Definition)
	}

	return []byte(b.String())
}

// HTML renders the Markdown guide as a complete HTML page.
func HTML(cat *catalog.Catalog) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML(Markdown(cat), p, r)
}

func bullets(b *strings.Builder, items []string) {
	for _, s := range items {
		fmt.Fprintf(b, "- %s\n", s)
	}
	b.WriteString("\n")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
