package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"hardsub/internal/config"
	"hardsub/internal/language"
)

// Requirement defines an external dependency hardsub relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the external binaries a run needs under cfg. Decoder
// binaries are resolved through ResolveBinary so a bundled copy next to the
// hardsub executable is reported when present.
func Requirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ResolveBinary(cfg.FFmpegBinary()),
			Description: "Samples frames from the source video",
		},
		{
			Name:        "FFprobe",
			Command:     ResolveBinary(cfg.FFprobeBinary()),
			Description: "Reads video dimensions and duration",
		},
		{
			Name:        "OCR engine",
			Command:     cfg.OCR.Command,
			Description: fmt.Sprintf("Recognizes subtitle text (%s, %s)", cfg.OCR.Engine, language.DisplayName(cfg.OCR.Language)),
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Missing returns the required statuses that are unavailable.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
