// Package detector classifies a target directory into a project type by
// scanning its immediate contents for marker files in a fixed priority
// order. Detection never inspects parent or sibling directories and has
// no side effects.
package detector

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ch1kim0n1/HackSentinel/internal/domain"
)

// MarkerDetector implements domain.ProjectDetector.
type MarkerDetector struct{}

func New() *MarkerDetector {
	return &MarkerDetector{}
}

// markerChecks is the priority table; the first match wins.
var markerChecks = []struct {
	projectType domain.ProjectType
	markers     []string
}{
	{domain.ProjectNodeJS, []string{"package.json"}},
	{domain.ProjectPython, []string{"requirements.txt"}}, // *.py shebang handled separately
	{domain.ProjectGo, []string{"go.mod"}},
	{domain.ProjectRust, []string{"Cargo.toml"}},
	{domain.ProjectJavaMaven, []string{"pom.xml"}},
	{domain.ProjectJavaGradle, []string{"build.gradle", "build.gradle.kts"}},
	{domain.ProjectMakefile, []string{"Makefile"}},
}

func (d *MarkerDetector) Detect(targetDir string) (domain.Detection, error) {
	info, err := os.Stat(targetDir)
	if err != nil {
		return domain.Detection{}, fmt.Errorf("%w: %s", domain.ErrDirectoryNotFound, targetDir)
	}
	if !info.IsDir() {
		return domain.Detection{}, fmt.Errorf("%w: %s is not a directory", domain.ErrDirectoryNotFound, targetDir)
	}

	entries, err := os.ReadDir(targetDir)
	if err != nil {
		return domain.Detection{}, fmt.Errorf("%w: %s", domain.ErrDirectoryNotFound, targetDir)
	}

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names[e.Name()] = true
		}
	}

	for _, check := range markerChecks {
		for _, marker := range check.markers {
			if names[marker] {
				return domain.Detection{
					Type:       check.projectType,
					MarkerPath: filepath.Join(targetDir, marker),
				}, nil
			}
		}
		// The python slot also accepts any *.py file with an interpreter
		// shebang, evaluated at the same priority as requirements.txt.
		if check.projectType == domain.ProjectPython {
			if marker := pythonShebangMarker(targetDir, entries); marker != "" {
				return domain.Detection{Type: domain.ProjectPython, MarkerPath: marker}, nil
			}
		}
	}

	return domain.Detection{Type: domain.ProjectGeneric}, nil
}

// pythonShebangMarker returns the first *.py file whose first line is a
// python shebang, or "".
func pythonShebangMarker(dir string, entries []os.DirEntry) string {
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".py") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if HasPythonShebang(path) {
			return path
		}
	}
	return ""
}

// HasPythonShebang reports whether the file starts with "#!" and names a
// python interpreter. Shared with discovery's executable-script rule.
func HasPythonShebang(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return false
	}
	first := scanner.Text()
	return strings.HasPrefix(first, "#!") && strings.Contains(first, "python")
}
