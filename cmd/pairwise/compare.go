package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/RishiKendai/pairwise/internal/alignment"
	"github.com/RishiKendai/pairwise/internal/plagiarism"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

type compareOptions struct {
	policy       policyFlags
	match        int64
	substitution int64
	gap          int64
	maxCells     int64
	maxSize      string
	jsonOutput   bool
	all          bool
}

// compareReport is the --json document of one comparison
type compareReport struct {
	First        string            `json:"first"`
	Second       string            `json:"second"`
	Policy       string            `json:"policy"`
	Config       string            `json:"config"`
	FirstTokens  int               `json:"firstTokens"`
	SecondTokens int               `json:"secondTokens"`
	TileCoverage *float64          `json:"tileCoverage,omitempty"`
	Risk         string            `json:"risk"`
	Result       *alignment.Result `json:"result"`
}

func newCompareCommand() *cobra.Command {
	defaults := alignment.DefaultConfig()
	opts := &compareOptions{}

	cmd := &cobra.Command{
		Use:   "compare <file1> <file2>",
		Short: "Align the token streams of two files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := runCompare(cmd.Context(), opts, args[0], args[1])
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(cmd, report)
			}
			out := cmd.OutOrStdout()
			_, err = io.WriteString(out, renderComparison(report, opts.all, shouldColorize(out)))
			return err
		},
	}

	opts.policy.register(cmd)
	cmd.Flags().Int64Var(&opts.match, "match", defaults.MatchBonus, "Score added for equal tokens")
	cmd.Flags().Int64Var(&opts.substitution, "substitution", defaults.SubstitutionPenalty, "Score added for unequal tokens at the same position")
	cmd.Flags().Int64Var(&opts.gap, "gap", defaults.GapPenalty, "Score added for every token paired with a gap")
	cmd.Flags().Int64Var(&opts.maxCells, "max-cells", defaults.MaxCells, "Largest token count product accepted")
	cmd.Flags().StringVar(&opts.maxSize, "max-size", defaultMaxSize, "Largest accepted file size, e.g. 512KB or 2MiB")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the comparison as JSON")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Show matched rows as well as differences")

	return cmd
}

func runCompare(ctx context.Context, opts *compareOptions, firstPath, secondPath string) (*compareReport, error) {
	policy, err := opts.policy.policy()
	if err != nil {
		return nil, err
	}
	limit, err := parseMaxSize(opts.maxSize)
	if err != nil {
		return nil, err
	}
	aligner, err := alignment.New(alignment.Config{
		MatchBonus:          opts.match,
		SubstitutionPenalty: opts.substitution,
		GapPenalty:          opts.gap,
		MaxCells:            opts.maxCells,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid scoring: %w", err)
	}

	first, err := loadSequence(firstPath, limit, policy)
	if err != nil {
		return nil, err
	}
	second, err := loadSequence(secondPath, limit, policy)
	if err != nil {
		return nil, err
	}

	result, err := aligner.Align(first, second)
	if err != nil {
		return nil, fmt.Errorf("failed to align: %w", err)
	}

	return &compareReport{
		First:        firstPath,
		Second:       secondPath,
		Policy:       policy.String(),
		Config:       aligner.Config().String(),
		FirstTokens:  first.Len(),
		SecondTokens: second.Len(),
		TileCoverage: plagiarism.TileCoverage(ctx, first, second),
		Risk:         plagiarism.RiskLevel(result.Similarity, plagiarism.DefaultRiskThresholds()),
		Result:       result,
	}, nil
}

func renderComparison(report *compareReport, all, colorize bool) string {
	var b strings.Builder

	r := report.Result
	summary := [][]string{
		{"First", fmt.Sprintf("%s (%d tokens)", report.First, report.FirstTokens)},
		{"Second", fmt.Sprintf("%s (%d tokens)", report.Second, report.SecondTokens)},
		{"Policy", report.Policy},
		{"Scoring", report.Config},
		{"Similarity", formatPercent(r.Similarity)},
		{"Tile coverage", formatCoverage(report.TileCoverage)},
		{"Risk", report.Risk},
		{"Score", strconv.FormatInt(r.Score, 10)},
		{"Positions", fmt.Sprintf("%d (%d matches, %d substitutions, %d gaps in first, %d gaps in second)",
			r.Len(), r.Matches, r.Substitutions, r.GapsInFirst, r.GapsInSecond)},
	}
	b.WriteString(renderTable([]string{"Field", "Value"}, summary, nil))
	b.WriteString("\n")

	rows := alignmentRows(r, all, colorize)
	if len(rows) == 0 {
		b.WriteString("No differences\n")
		return b.String()
	}
	b.WriteString(renderTable(
		[]string{"#", "Line", "First", "Line", "Second", "Operation"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignLeft, alignLeft},
	))
	b.WriteString("\n")
	return b.String()
}

// alignmentRows lists aligned positions, skipping matches unless all is set
func alignmentRows(r *alignment.Result, all, colorize bool) [][]string {
	rows := make([][]string, 0, r.Len())
	for i, op := range r.Operations {
		if op == alignment.Match && !all {
			continue
		}
		first, second := r.AlignedFirst[i], r.AlignedSecond[i]
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			slotLine(first),
			first.Display(),
			slotLine(second),
			second.Display(),
			paintOperation(op, colorize),
		})
	}
	return rows
}

func slotLine(s alignment.Slot) string {
	if s.Gap {
		return ""
	}
	return strconv.Itoa(s.Token.Line)
}

func paintOperation(op alignment.Operation, colorize bool) string {
	name := op.String()
	if !colorize {
		return name
	}
	switch op {
	case alignment.Match:
		return text.Colors{text.FgGreen}.Sprint(name)
	case alignment.Substitute:
		return text.Colors{text.FgYellow}.Sprint(name)
	default:
		return text.Colors{text.FgRed}.Sprint(name)
	}
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 2, 64) + "%"
}

func formatCoverage(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return formatPercent(*v)
}
