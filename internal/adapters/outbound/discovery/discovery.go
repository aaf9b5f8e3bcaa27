// Package discovery enumerates runnable entry points for a detected
// project type. The returned list is ordered, deduplicated by
// (label, command), and already filtered by the caller's exclude globs.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/detector"
	"github.com/ch1kim0n1/HackSentinel/internal/domain"
)

// maxGenericEntries caps generic discovery so a pathological directory
// full of executables cannot flood the schedule.
const maxGenericEntries = 20

// TypedDiscoverer implements domain.EntryPointDiscoverer with one rule
// set per project type.
type TypedDiscoverer struct{}

func New() *TypedDiscoverer {
	return &TypedDiscoverer{}
}

func (d *TypedDiscoverer) Discover(targetDir string, det domain.Detection, excludePatterns []string) (domain.DiscoveryResult, error) {
	var (
		eps      []domain.EntryPoint
		warnings []string
	)

	switch det.Type {
	case domain.ProjectNodeJS:
		eps, warnings = d.nodejs(targetDir)
	case domain.ProjectPython:
		eps = d.python(targetDir)
	case domain.ProjectGo:
		eps = d.goProject(targetDir)
	case domain.ProjectRust:
		eps = d.rust(targetDir)
	case domain.ProjectJavaMaven:
		eps = []domain.EntryPoint{{Label: "maven exec", Command: []string{"mvn", "exec:java"}, WorkingDir: targetDir}}
	case domain.ProjectJavaGradle:
		eps = []domain.EntryPoint{{Label: "gradle run", Command: []string{"gradle", "run"}, WorkingDir: targetDir}}
	case domain.ProjectMakefile:
		eps, warnings = d.makefile(targetDir)
	default:
		eps = d.generic(targetDir)
	}

	eps = dedupe(eps)

	result := domain.DiscoveryResult{Warnings: warnings}
	for _, ep := range eps {
		if matchesExclude(ep, excludePatterns) {
			result.Excluded++
			continue
		}
		result.EntryPoints = append(result.EntryPoints, ep)
	}
	return result, nil
}

// nodejs emits the first common entry file as the main entry point, then
// one entry per package.json script in declared key order. An unparsable
// package.json degrades this marker to the generic strategy.
func (d *TypedDiscoverer) nodejs(dir string) ([]domain.EntryPoint, []string) {
	var eps []domain.EntryPoint

	for _, name := range []string{"index.js", "app.js", "server.js"} {
		if fileExists(filepath.Join(dir, name)) {
			eps = append(eps, domain.EntryPoint{
				Label:      "main entry point",
				Command:    []string{"node", name},
				WorkingDir: dir,
			})
			break
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		warning := fmt.Sprintf("reading package.json: %v; falling back to generic discovery", err)
		return append(eps, d.generic(dir)...), []string{warning}
	}

	scripts, err := scriptNames(data)
	if err != nil {
		warning := fmt.Sprintf("parsing package.json: %v; falling back to generic discovery", err)
		return append(eps, d.generic(dir)...), []string{warning}
	}

	for _, name := range scripts {
		eps = append(eps, domain.EntryPoint{
			Label:      "script:" + name,
			Command:    []string{"npm", "run", name},
			WorkingDir: dir,
		})
	}
	return eps, nil
}

// python emits main.py, then __main__.py inside immediate subpackages,
// then executable shebang scripts. os.ReadDir returns entries sorted by
// name, which gives the required alphabetical order.
func (d *TypedDiscoverer) python(dir string) []domain.EntryPoint {
	var eps []domain.EntryPoint

	if fileExists(filepath.Join(dir, "main.py")) {
		eps = append(eps, domain.EntryPoint{
			Label:      "main.py",
			Command:    []string{pythonCmd(), "main.py"},
			WorkingDir: dir,
		})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return eps
	}

	for _, e := range entries {
		if e.IsDir() && fileExists(filepath.Join(dir, e.Name(), "__main__.py")) {
			eps = append(eps, domain.EntryPoint{
				Label:      "module:" + e.Name(),
				Command:    []string{pythonCmd(), "-m", e.Name()},
				WorkingDir: dir,
			})
		}
	}

	for _, e := range entries {
		if e.IsDir() || !isExecutable(e) {
			continue
		}
		if detector.HasPythonShebang(filepath.Join(dir, e.Name())) {
			eps = append(eps, domain.EntryPoint{
				Label:      "script:" + e.Name(),
				Command:    []string{"./" + e.Name()},
				WorkingDir: dir,
			})
		}
	}
	return eps
}

func (d *TypedDiscoverer) goProject(dir string) []domain.EntryPoint {
	var eps []domain.EntryPoint
	if fileExists(filepath.Join(dir, "main.go")) {
		eps = append(eps, domain.EntryPoint{
			Label:      "run main.go",
			Command:    []string{"go", "run", "main.go"},
			WorkingDir: dir,
		})
	}
	if fileExists(filepath.Join(dir, "go.mod")) {
		eps = append(eps, domain.EntryPoint{
			Label:      "run module",
			Command:    []string{"go", "run", "."},
			WorkingDir: dir,
		})
	}
	return eps
}

func (d *TypedDiscoverer) rust(dir string) []domain.EntryPoint {
	if !fileExists(filepath.Join(dir, "Cargo.toml")) {
		return nil
	}
	return []domain.EntryPoint{{
		Label:      "cargo run",
		Command:    []string{"cargo", "run"},
		WorkingDir: dir,
	}}
}

// makefile emits one entry per target in file-declaration order,
// excluding dot-prefixed targets.
func (d *TypedDiscoverer) makefile(dir string) ([]domain.EntryPoint, []string) {
	data, err := os.ReadFile(filepath.Join(dir, "Makefile"))
	if err != nil {
		return d.generic(dir), []string{fmt.Sprintf("reading Makefile: %v; falling back to generic discovery", err)}
	}

	var eps []domain.EntryPoint
	for _, target := range makeTargets(data) {
		eps = append(eps, domain.EntryPoint{
			Label:      "make " + target,
			Command:    []string{"make", target},
			WorkingDir: dir,
		})
	}
	return eps, nil
}

// generic emits one entry per executable file in the immediate
// directory, alphabetically, capped at maxGenericEntries.
func (d *TypedDiscoverer) generic(dir string) []domain.EntryPoint {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var eps []domain.EntryPoint
	for _, e := range entries {
		if e.IsDir() || !isExecutable(e) {
			continue
		}
		eps = append(eps, domain.EntryPoint{
			Label:      "executable:" + e.Name(),
			Command:    []string{"./" + e.Name()},
			WorkingDir: dir,
		})
		if len(eps) == maxGenericEntries {
			break
		}
	}
	return eps
}

func dedupe(eps []domain.EntryPoint) []domain.EntryPoint {
	seen := make(map[string]bool, len(eps))
	var out []domain.EntryPoint
	for _, ep := range eps {
		if seen[ep.Key()] {
			continue
		}
		seen[ep.Key()] = true
		out = append(out, ep)
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isExecutable(e os.DirEntry) bool {
	info, err := e.Info()
	if err != nil {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}

func pythonCmd() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

// makeTargets parses target names in declaration order. Recipe lines,
// comments, variable assignments, pattern rules and dot-prefixed targets
// are skipped.
func makeTargets(data []byte) []string {
	var targets []string
	seen := map[string]bool{}

	for _, line := range strings.Split(string(data), "\n") {
		if line == "" || strings.HasPrefix(line, "\t") || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		if idx+1 < len(line) && line[idx+1] == '=' {
			continue // := assignment, not a rule
		}
		name := strings.TrimSpace(line[:idx])
		if name == "" || strings.HasPrefix(name, ".") {
			continue
		}
		if strings.ContainsAny(name, " \t%$") {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		targets = append(targets, name)
	}
	return targets
}
