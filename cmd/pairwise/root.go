package main

import (
	"fmt"

	"github.com/RishiKendai/pairwise/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pairwise",
		Short:         "Compare source files by token alignment",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newCompareCommand())
	rootCmd.AddCommand(newTokensCommand())

	return rootCmd
}

// policyFlags are the normalization flags shared by compare and tokens
type policyFlags struct {
	identifiers string
	literals    string
}

func (p *policyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.identifiers, "identifiers", "verbatim", "Identifier normalization: verbatim, placeholder or indexed")
	cmd.Flags().StringVar(&p.literals, "literals", "verbatim", "Literal normalization: verbatim or placeholder")
}

func (p *policyFlags) policy() (tokenizer.Policy, error) {
	ids, err := tokenizer.ParseIdentifierMode(p.identifiers)
	if err != nil {
		return tokenizer.Policy{}, fmt.Errorf("invalid --identifiers: %w", err)
	}
	lits, err := tokenizer.ParseLiteralMode(p.literals)
	if err != nil {
		return tokenizer.Policy{}, fmt.Errorf("invalid --literals: %w", err)
	}
	return tokenizer.Policy{Identifiers: ids, Literals: lits}, nil
}
