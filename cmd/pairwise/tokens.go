package main

import (
	"io"
	"strconv"

	"github.com/RishiKendai/pairwise/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newTokensCommand() *cobra.Command {
	var policy policyFlags
	var maxSize string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the normalized token stream of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := policy.policy()
			if err != nil {
				return err
			}
			limit, err := parseMaxSize(maxSize)
			if err != nil {
				return err
			}
			seq, err := loadSequence(args[0], limit, p)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, seq)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), renderTokens(seq))
			return err
		},
	}

	policy.register(cmd)
	cmd.Flags().StringVar(&maxSize, "max-size", defaultMaxSize, "Largest accepted file size, e.g. 512KB or 2MiB")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the tokens as JSON")

	return cmd
}

func renderTokens(seq tokenizer.Sequence) string {
	if seq.Len() == 0 {
		return "No tokens\n"
	}
	rows := make([][]string, 0, seq.Len())
	for _, tok := range seq {
		rows = append(rows, []string{
			strconv.Itoa(tok.Position),
			strconv.Itoa(tok.Line),
			tok.Category.String(),
			tok.Value,
		})
	}
	return renderTable(
		[]string{"#", "Line", "Category", "Value"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft},
	) + "\n"
}
