package report

import (
	"encoding/json"

	"github.com/ch1kim0n1/HackSentinel/internal/domain"
)

// jsonReport wraps the analysis result with a summary block so JSON
// consumers do not have to re-count severities.
type jsonReport struct {
	Tool    string                 `json:"tool"`
	Summary jsonSummary            `json:"summary"`
	Result  *domain.AnalysisResult `json:"result"`
}

type jsonSummary struct {
	TotalBugs  int                     `json:"total_bugs"`
	BySeverity map[domain.Severity]int `json:"by_severity"`
}

// JSON renders the machine-readable report.
func JSON(res *domain.AnalysisResult) (string, error) {
	out := jsonReport{
		Tool: "sentinel",
		Summary: jsonSummary{
			TotalBugs:  len(res.Bugs),
			BySeverity: res.SeverityCounts(),
		},
		Result: res,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
