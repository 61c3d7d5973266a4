package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/statsmd/internal/catalog"
	"github.com/p-n-ai/statsmd/internal/glossary"
	"github.com/p-n-ai/statsmd/internal/guide"
	"github.com/p-n-ai/statsmd/internal/platform/logging"
	"github.com/p-n-ai/statsmd/internal/recommend"
)

type options struct {
	catalogDir string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "statsmd",
		Short:        "Statistical test selection reference",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), opts.logLevel, "text"))
		},
	}
	root.PersistentFlags().StringVar(&opts.catalogDir, "catalog", os.Getenv("STATSMD_CATALOG_PATH"),
		"directory of catalog documents (default: embedded catalog)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		newRecommendCmd(opts),
		newAlternativesCmd(opts),
		newGlossaryCmd(opts),
		newValidateCmd(opts),
		newExportCmd(opts),
	)
	return root
}

func (o *options) load() (*catalog.Catalog, error) {
	if o.catalogDir == "" {
		return catalog.Default()
	}
	return catalog.Load(o.catalogDir)
}

func newRecommendCmd(opts *options) *cobra.Command {
	var outcome, design, comparison string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "List tests that fit an outcome type, study design and comparison",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := parseSelection(outcome, design, comparison)
			if err != nil {
				return err
			}
			cat, err := opts.load()
			if err != nil {
				return err
			}

			tests := recommend.Recommend(cat.Tests(), sel)
			out := cmd.OutOrStdout()
			if len(tests) == 0 {
				fmt.Fprintln(out, "No tests match this combination.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY")
			for _, t := range tests {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.DisplayName, t.Category)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&outcome, "outcome", "", "outcome variable type")
	cmd.Flags().StringVar(&design, "design", "", "study design")
	cmd.Flags().StringVar(&comparison, "comparison", "", "comparison type (optional)")
	_ = cmd.MarkFlagRequired("outcome")
	_ = cmd.MarkFlagRequired("design")
	return cmd
}

func parseSelection(outcome, design, comparison string) (recommend.Selection, error) {
	o, err := catalog.ParseVariableType(outcome)
	if err != nil {
		return recommend.Selection{}, err
	}
	d, err := catalog.ParseStudyDesignType(design)
	if err != nil {
		return recommend.Selection{}, err
	}
	c, err := catalog.ParseComparisonType(comparison)
	if err != nil {
		return recommend.Selection{}, err
	}
	return recommend.Selection{Outcome: o, Design: d, Comparison: c}, nil
}

func newAlternativesCmd(opts *options) *cobra.Command {
	var violated []string

	cmd := &cobra.Command{
		Use:   "alternatives <test-id>",
		Short: "List alternatives for a test whose assumptions are violated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.load()
			if err != nil {
				return err
			}
			if _, ok := cat.Test(args[0]); !ok {
				return fmt.Errorf("%q: %w", args[0], recommend.ErrUnknownTest)
			}

			var ids []catalog.AssumptionType
			for _, v := range violated {
				a, err := catalog.ParseAssumptionType(strings.TrimSpace(v))
				if err != nil {
					return err
				}
				if a != "" {
					ids = append(ids, a)
				}
			}

			alts := recommend.Alternatives(cat.Tests(), args[0], recommend.NewViolationSet(ids...))
			out := cmd.OutOrStdout()
			if len(alts) == 0 {
				fmt.Fprintln(out, "No alternatives needed.")
				return nil
			}
			for _, t := range alts {
				fmt.Fprintf(out, "%s\t%s\n", t.ID, t.DisplayName)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&violated, "violated", nil, "violated assumptions, comma separated")
	return cmd
}

func newGlossaryCmd(opts *options) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "glossary [query]",
		Short: "Search glossary terms and definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if category != glossary.AllCategories {
				if _, err := catalog.ParseGlossaryCategory(category); err != nil {
					return err
				}
			}
			cat, err := opts.load()
			if err != nil {
				return err
			}

			idx := glossary.New(cat.Glossary())
			terms := idx.Search(glossary.Query{Text: strings.Join(args, " "), Category: category})
			out := cmd.OutOrStdout()
			for _, t := range terms {
				fmt.Fprintf(out, "%s [%s]\n  %s\n", t.Term, t.Category, t.Definition)
			}
			fmt.Fprintf(out, "%d term(s)\n", len(terms))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", glossary.AllCategories, "glossary category filter")
	return cmd
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate catalog documents and report dangling references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			t := cat.Tables()
			fmt.Fprintf(out, "tests: %d\nassumptions: %d\nstudy designs: %d\nglossary: %d\ncases: %d\nquestions: %d\nregression models: %d\n",
				len(t.Tests), len(t.Assumptions), len(t.StudyDesigns), len(t.Glossary),
				len(t.Cases), len(t.Questions), len(t.RegressionModels))

			refs := cat.Integrity()
			fmt.Fprintf(out, "dangling references: %d\n", len(refs))
			for _, r := range refs {
				fmt.Fprintf(out, "  %s\n", r)
			}
			fmt.Fprintf(out, "fingerprint: %s\n", cat.Fingerprint())
			return nil
		},
	}
}

func newExportCmd(opts *options) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the study guide as .md, .html or .xlsx",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := guide.FormatFor(path); err != nil {
				return err
			}
			cat, err := opts.load()
			if err != nil {
				return err
			}
			if err := guide.WriteFile(cat, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "out", "", "output file (guide.md, guide.html or guide.xlsx)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
