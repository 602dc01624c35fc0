package main

import (
	"fmt"
	"os"

	"github.com/RishiKendai/pairwise/internal/tokenizer"
	"github.com/dustin/go-humanize"
)

const defaultMaxSize = "1MB"

func parseMaxSize(raw string) (int64, error) {
	n, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid --max-size %q: %w", raw, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("--max-size must be greater than 0")
	}
	return int64(n), nil
}

// loadSequence reads path, refusing files above limit, and tokenizes it
func loadSequence(path string, limit int64, policy tokenizer.Policy) (tokenizer.Sequence, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > limit {
		return nil, fmt.Errorf("%s is %s, above the %s limit", path,
			humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(limit)))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	seq, err := tokenizer.TokenizeBytes(raw, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize %s: %w", path, err)
	}
	return seq, nil
}
