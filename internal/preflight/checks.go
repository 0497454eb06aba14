package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sys/unix"

	"vidscribe/internal/config"
	"vidscribe/internal/deps"
)

// MinFreeBytes is the free space below which the work disk check fails.
const MinFreeBytes uint64 = 256 << 20

// CheckSystemDeps evaluates the external binaries required by cfg.
func CheckSystemDeps(cfg *config.Config) []Result {
	requirements := deps.MediaRequirements(
		cfg.Audio.FFmpegBinary,
		cfg.Audio.FFprobeBinary,
		cfg.Speech.Provider == config.ProviderWhisperX,
	)
	statuses := deps.CheckBinaries(requirements)
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		r := Result{Name: status.Name, Passed: status.Available || status.Optional}
		switch {
		case status.Available:
			r.Detail = status.Path
		case status.Optional:
			r.Detail = "not installed (optional)"
		default:
			r.Detail = status.Detail
		}
		results = append(results, r)
	}
	return results
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// FreeBytes reports the space available to unprivileged users on the
// filesystem holding path.
func FreeBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil //nolint:gosec
}

// CheckFreeSpace fails when fewer than minBytes are available at path.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	free, err := FreeBytes(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	detail := fmt.Sprintf("%s free", humanize.IBytes(free))
	if free < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s, need at least %s", detail, humanize.IBytes(minBytes))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckCredentials reports whether the selected provider has its credential.
func CheckCredentials(cfg *config.Config) Result {
	name := fmt.Sprintf("Speech provider (%s)", cfg.Speech.Provider)
	if err := cfg.ValidateCredentials(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if cfg.Speech.Provider == config.ProviderWhisperX {
		return Result{Name: name, Passed: true, Detail: "local, no credential needed"}
	}
	return Result{Name: name, Passed: true, Detail: "credential configured"}
}

// CheckOpenAI lists models to verify the key is accepted.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckOpenAI(ctx context.Context, apiKey, baseURL string) Result {
	const name = "OpenAI API"
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientCfg := openai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(baseURL); base != "" {
		clientCfg.BaseURL = strings.TrimSuffix(base, "/")
	}
	client := openai.NewClientWithConfig(clientCfg)
	if _, err := client.ListModels(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeAPIError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// summarizeAPIError produces a human-readable summary for health check failures.
func summarizeAPIError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && (apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403) {
		return "auth failed (invalid api key)"
	}
	return err.Error()
}
