package dialogue

import (
	"fmt"
	"strings"

	"github.com/tbxark/tripwizard/types"
)

// formatRequest lays the request out as markdown for the model.
func formatRequest(req *Request) string {
	sections := make([]string, 0, 4)
	sections = append(sections, fmt.Sprintf("# Current step:\n%s (%d of %d), phase %s", req.Step.Title, req.Index+1, req.Total, req.Phase))
	if len(req.Answers) > 0 {
		sections = append(sections, "# Answers so far:\n"+strings.TrimRight(types.FormatSummary(req.Answers), "\n"))
	}
	if errs := types.FormatFieldErrors(req.Errors); errs != "" {
		sections = append(sections, strings.TrimRight(errs, "\n"))
	}
	if req.Failure != nil {
		sections = append(sections, "# Problem:\n"+FailureNotice(req.Failure))
	}
	return strings.Join(sections, "\n\n")
}
