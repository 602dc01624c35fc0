package plagiarism

import (
	"context"
	"fmt"
	"time"

	"github.com/RishiKendai/pairwise/internal/alignment"
	"github.com/RishiKendai/pairwise/internal/tokenizer"
)

type jobOutcome struct {
	comparison *Comparison
	cells      int64
	elapsed    time.Duration
	err        error
}

// AlignmentJob tokenizes both inputs under one policy and aligns them
type AlignmentJob struct {
	ctx     context.Context
	first   string
	second  string
	policy  tokenizer.Policy
	aligner *alignment.Aligner
	done    chan jobOutcome
}

func newAlignmentJob(ctx context.Context, first, second string, policy tokenizer.Policy, aligner *alignment.Aligner) *AlignmentJob {
	return &AlignmentJob{
		ctx:     ctx,
		first:   first,
		second:  second,
		policy:  policy,
		aligner: aligner,
		done:    make(chan jobOutcome, 1),
	}
}

func (j *AlignmentJob) Execute(ctx context.Context) error {
	// the caller may have given up while the job sat in the queue
	if err := j.ctx.Err(); err != nil {
		j.done <- jobOutcome{err: err}
		return err
	}

	start := time.Now()
	outcome := j.run()
	outcome.elapsed = time.Since(start)
	j.done <- outcome
	return outcome.err
}

func (j *AlignmentJob) run() jobOutcome {
	firstTokens, err := tokenizer.Tokenize(j.first, j.policy)
	if err != nil {
		return jobOutcome{err: fmt.Errorf("failed to tokenize first input: %w", err)}
	}
	secondTokens, err := tokenizer.Tokenize(j.second, j.policy)
	if err != nil {
		return jobOutcome{err: fmt.Errorf("failed to tokenize second input: %w", err)}
	}

	result, err := j.aligner.Align(firstTokens, secondTokens)
	if err != nil {
		return jobOutcome{err: fmt.Errorf("failed to align: %w", err)}
	}

	coverage := TileCoverage(j.ctx, firstTokens, secondTokens)
	if err := j.ctx.Err(); err != nil {
		return jobOutcome{err: err}
	}

	return jobOutcome{
		comparison: &Comparison{
			Result:       result,
			FirstTokens:  firstTokens.Len(),
			SecondTokens: secondTokens.Len(),
			TileCoverage: coverage,
			Policy:       j.policy.String(),
		},
		cells: int64(firstTokens.Len()) * int64(secondTokens.Len()),
	}
}
