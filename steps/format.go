package steps

import (
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/tbxark/tripwizard/types"
)

// FormatPlan renders a step list as a markdown table with the seeded values.
func FormatPlan(list []types.StepDescriptor) string {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("#", "Step", "Seed")
	for i, desc := range list {
		var seeds []string
		for _, field := range desc.Kind.Fields() {
			if !desc.Initial.Has(field) {
				continue
			}
			value := desc.Initial.DisplayValue(field)
			if value == "" {
				continue
			}
			seeds = append(seeds, types.DisplayName(field)+": "+value)
		}
		_ = table.Append(strconv.Itoa(i+1), desc.Title, strings.Join(seeds, ", "))
	}
	_ = table.Render()
	return buf.String()
}
