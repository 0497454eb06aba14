// Package deps reports whether the external programs vidscribe shells out to
// (ffmpeg, ffprobe, uvx) can be found.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names one external program and what it is used for.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// Optional programs are reported but never block a run.
	Optional bool
}

// Status is the lookup result for one Requirement.
type Status struct {
	Requirement
	Available bool
	Path      string // resolved executable, set when Available
	Detail    string // why the program is unavailable
}

// CheckBinaries resolves every requirement on PATH, in order.
func CheckBinaries(requirements []Requirement) []Status {
	out := make([]Status, len(requirements))
	for i, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		out[i] = Status{Requirement: req}
		if req.Command == "" {
			out[i].Detail = "command not configured"
			continue
		}
		path, err := exec.LookPath(req.Command)
		if err != nil {
			out[i].Detail = fmt.Sprintf("binary %q not found", req.Command)
			continue
		}
		out[i].Available, out[i].Path = true, path
	}
	return out
}

// Missing filters statuses down to required programs that were not found.
func Missing(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if !s.Optional && !s.Available {
			out = append(out, s)
		}
	}
	return out
}
