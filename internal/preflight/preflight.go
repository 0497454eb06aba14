package preflight

import (
	"context"

	"vidscribe/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options toggles checks that reach beyond the local machine.
type Options struct {
	// Online verifies the speech provider credential against its API.
	Online bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := CheckSystemDeps(cfg)
	results = append(results,
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckFreeSpace("Work disk space", cfg.Paths.WorkDir, MinFreeBytes),
		CheckCredentials(cfg),
	)
	if opts.Online && cfg.Speech.Provider == config.ProviderOpenAI {
		results = append(results, CheckOpenAI(ctx, cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
