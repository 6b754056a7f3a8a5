package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tbxark/tripwizard/logger"
	"github.com/tbxark/tripwizard/steps"
	"github.com/tbxark/tripwizard/types"
)

var stepsCmd = &cobra.Command{
	Use:   "steps [request]",
	Short: "Print the step plan a request would produce",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
		defer func() { _ = log.Sync() }()

		a, err := newApp(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		intent, err := a.parser.ParseIntent(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if intent.Empty() {
			_, _ = fmt.Fprintln(out, "The request could not be analysed, showing the default plan.")
		}
		list := steps.Build(intent)
		_, _ = fmt.Fprintf(out, "%s (%d steps)\n\n", tripKind(intent), len(list))
		_, _ = fmt.Fprint(out, steps.FormatPlan(list))
		return nil
	},
}

func tripKind(intent types.Intent) string {
	if intent.IsDayTrip {
		return "Day trip"
	}
	return "Multi-day trip"
}
