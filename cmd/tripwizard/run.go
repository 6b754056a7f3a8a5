package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"
	"github.com/tbxark/tripwizard"
	"github.com/tbxark/tripwizard/command"
	"github.com/tbxark/tripwizard/dialogue"
	"github.com/tbxark/tripwizard/enrich"
	"github.com/tbxark/tripwizard/logger"
	"github.com/tbxark/tripwizard/render"
	"github.com/tbxark/tripwizard/steps"
	"github.com/tbxark/tripwizard/submit"
	"github.com/tbxark/tripwizard/types"
	"github.com/tbxark/tripwizard/wizard"
)

var (
	checkpointPath string
	previewDir     string
)

var runCmd = &cobra.Command{
	Use:   "run [request]",
	Short: "Fill in a trip interactively",
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

		t := &terminalRun{app: a, out: cmd.OutOrStdout()}
		return t.start(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	runCmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "file to resume from and to save an interrupted run to")
	runCmd.Flags().StringVar(&previewDir, "preview-dir", os.TempDir(), "directory the preview page is written to")
}

type terminalRun struct {
	*app
	out io.Writer
	run *tripwizard.Run
}

func (t *terminalRun) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.out, format, args...)
}

func (t *terminalRun) start(ctx context.Context, prompt string) error {
	resp, err := t.open(ctx, prompt)
	if err != nil {
		return err
	}
	t.printf("\n%s\n", steps.FormatPlan(t.run.State.Steps()))

	for {
		t.printf("\n%s\n", resp.Message)
		if resp.Completed {
			if resp.Trip != nil {
				t.printf("Trip %s saved as %s.\n", resp.Trip.ID, resp.Trip.Status)
			}
			t.dropCheckpoint()
			return nil
		}

		var next *tripwizard.Response
		if t.run.State.Phase() == types.PhaseConfirming {
			next, err = t.confirmStep(ctx)
		} else {
			next, err = t.collectStep(ctx, resp)
		}
		if errors.Is(err, terminal.InterruptErr) {
			return t.interrupt()
		}
		if next == nil {
			return err
		}
		resp = next
	}
}

// open resumes the checkpoint file when there is one, otherwise starts from
// the request. A request that cannot be analysed starts an empty wizard.
func (t *terminalRun) open(ctx context.Context, prompt string) (*tripwizard.Response, error) {
	if checkpointPath != "" {
		if data, err := os.ReadFile(checkpointPath); err == nil {
			run, err := t.assistant.RestoreCheckpoint(data)
			if err != nil {
				return nil, err
			}
			t.run = run
			t.printf("Resuming the trip saved in %s.\n", checkpointPath)
			return t.assistant.Current(ctx, run), nil
		}
	}

	if strings.TrimSpace(prompt) == "" {
		if err := survey.AskOne(&survey.Input{
			Message: "Describe the trip:",
			Help:    "For example: a day in Bruges by coach with a canal tour, 89 euros",
		}, &prompt); err != nil {
			return nil, err
		}
	}
	run, resp, err := t.assistant.Start(ctx, prompt)
	if err != nil {
		t.printf("%s\n", dialogue.FailureNotice(err))
		run, resp, err = t.assistant.StartWithIntent(ctx, types.Intent{})
		if err != nil {
			return nil, err
		}
	}
	t.run = run
	return resp, nil
}

func (t *terminalRun) collectStep(ctx context.Context, resp *tripwizard.Response) (*tripwizard.Response, error) {
	step := t.run.State.Current()
	if step.Kind == types.StepLodging {
		if next, err := t.lookupHotel(ctx); next != nil || err != nil {
			return next, err
		}
	}

	form, err := render.FormValues(resp.HTML)
	if err != nil {
		return nil, err
	}
	if err := askFields(step, form); err != nil {
		return nil, err
	}

	help := "next, back, skip or cancel"
	if step.Kind == types.StepProgram {
		help += ", or generate to draft the programme"
	}
	var input string
	if err := survey.AskOne(&survey.Input{Message: "What next?", Default: "next", Help: help}, &input); err != nil {
		return nil, err
	}
	if step.Kind == types.StepProgram && strings.EqualFold(strings.TrimSpace(input), "generate") {
		return t.assistant.GenerateProgram(ctx, t.run)
	}

	parsed, err := t.commands.ParseCommand(ctx, &command.Request{Step: step, Input: input})
	if err != nil {
		return nil, err
	}
	if parsed == command.Confirm {
		parsed = command.Next
	}
	answers, err := t.assistant.Collect(t.run, form)
	if err != nil {
		return nil, err
	}
	wcmd, ok := command.ToWizard(parsed, answers)
	if !ok {
		t.printf("Sorry, %q is not something I can do here (%s).\n", input, help)
		return resp, nil
	}
	next, _ := t.assistant.Dispatch(ctx, t.run, wcmd)
	return next, nil
}

// lookupHotel offers the place search on the lodging step. It returns a nil
// response when the search is skipped or unavailable.
func (t *terminalRun) lookupHotel(ctx context.Context) (*tripwizard.Response, error) {
	var query string
	if err := survey.AskOne(&survey.Input{
		Message: "Search a hotel (leave empty to type it in):",
		Default: t.run.State.Answers().String(types.FieldHotelName),
	}, &query); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	predictions, err := t.assistant.Autocomplete(ctx, query)
	if errors.Is(err, tripwizard.ErrNoPlaces) {
		return nil, nil
	}
	if err != nil || len(predictions) == 0 {
		t.printf("No hotel found for %q.\n", query)
		return nil, nil
	}

	options := make([]string, len(predictions))
	for i, p := range predictions {
		options[i] = p.Description
	}
	var picked int
	if err := survey.AskOne(&survey.Select{Message: "Which hotel?", Options: options}, &picked); err != nil {
		return nil, err
	}
	resp, err := t.assistant.SelectPlace(ctx, t.run, predictions[picked].PlaceID)
	if err != nil {
		var failure error = err
		if errors.Is(err, enrich.ErrPlaceNotFound) {
			failure = fmt.Errorf("%s is no longer listed", predictions[picked].Description)
		}
		t.printf("%s\n", dialogue.FailureNotice(failure))
		return nil, nil
	}
	return resp, nil
}

func (t *terminalRun) confirmStep(ctx context.Context) (*tripwizard.Response, error) {
	const (
		publish = "Preview and publish"
		back    = "Go back"
		cancel  = "Cancel the trip"
	)
	t.printf("\n%s\n", types.FormatSummary(t.run.State.Answers()))
	var choice string
	if err := survey.AskOne(&survey.Select{Message: "Ready?", Options: []string{publish, back, cancel}}, &choice); err != nil {
		return nil, err
	}
	switch choice {
	case back:
		next, _ := t.assistant.Dispatch(ctx, t.run, wizard.Retreat(nil))
		return next, nil
	case cancel:
		next, _ := t.assistant.Dispatch(ctx, t.run, wizard.Command{Type: wizard.CommandCancel})
		return next, nil
	}

	resp, err := t.assistant.Preview(ctx, t.run)
	if err != nil {
		// the answers are kept, show the notice and ask again
		if resp == nil {
			resp = t.assistant.Current(ctx, t.run)
		}
		return resp, nil
	}
	if resp.Enrichment != nil {
		t.printf("Public price %.2f, agency cost %.2f, margin %d.\n",
			resp.Enrichment.PublicPrice, resp.Enrichment.B2BCost, resp.Enrichment.Margin)
	}
	path := filepath.Join(previewDir, "trip-"+t.run.ID+".html")
	if err := os.WriteFile(path, []byte(resp.PreviewHTML), 0o644); err != nil {
		t.printf("Could not write the preview: %v\n", err)
	} else {
		t.printf("Preview written to %s\n", path)
	}

	var status string
	if err := survey.AskOne(&survey.Select{
		Message: "Publish as:",
		Options: []string{string(submit.StatusProposed), string(submit.StatusAssigned), string(submit.StatusSold)},
	}, &status); err != nil {
		return nil, err
	}
	publishNow := false
	if err := survey.AskOne(&survey.Confirm{Message: "Publish the trip now?", Default: true}, &publishNow); err != nil {
		return nil, err
	}
	if !publishNow {
		return t.assistant.Current(ctx, t.run), nil
	}
	parsed, _ := submit.ParseStatus(status)
	next, _ := t.assistant.Confirm(ctx, t.run, parsed)
	return next, nil
}

// interrupt saves the run when a checkpoint file is configured.
func (t *terminalRun) interrupt() error {
	if checkpointPath == "" || t.run == nil {
		t.printf("\nInterrupted, the trip was not saved.\n")
		return nil
	}
	data, err := t.assistant.CreateCheckpoint(t.run)
	if err != nil {
		return err
	}
	if err := os.WriteFile(checkpointPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	t.printf("\nProgress saved to %s, run again with --checkpoint to continue.\n", checkpointPath)
	return nil
}

func (t *terminalRun) dropCheckpoint() {
	if checkpointPath != "" {
		_ = os.Remove(checkpointPath)
	}
}

// askFields prompts for each field of the step, seeded with the values the
// rendered page carries. Disabled fields are absent from form and skipped.
func askFields(step types.StepDescriptor, form url.Values) error {
	for _, field := range step.Kind.Fields() {
		switch field {
		case types.FieldHotelPlaceID, types.FieldHotelAddress, types.FieldHotelLat, types.FieldHotelLng:
			continue
		case types.FieldActivities:
			var text string
			if err := survey.AskOne(&survey.Multiline{
				Message: "Activities, one per line:",
				Default: strings.Join(form[field], "\n"),
			}, &text); err != nil {
				return err
			}
			form[field] = splitLines(text)
		case types.FieldProgram:
			var text string
			if err := survey.AskOne(&survey.Multiline{
				Message: "Programme, one \"HH:MM activity\" per line:",
				Default: programText(form),
			}, &text); err != nil {
				return err
			}
			setProgram(form, text)
		case types.FieldIsDayTrip:
			choice, err := selectOne("Trip type:", []string{"day", "multi"}, form.Get(field))
			if err != nil {
				return err
			}
			form.Set(field, choice)
		case types.FieldTransportMode:
			modes := []string{string(types.TransportAir), string(types.TransportRail), string(types.TransportCoach), string(types.TransportCar)}
			choice, err := selectOne(types.DisplayName(field)+":", modes, form.Get(field))
			if err != nil {
				return err
			}
			form.Set(field, choice)
		default:
			if _, ok := form[field]; !ok {
				continue
			}
			var value string
			if err := survey.AskOne(&survey.Input{
				Message: types.DisplayName(field) + ":",
				Default: form.Get(field),
			}, &value); err != nil {
				return err
			}
			form.Set(field, value)
		}
	}
	return nil
}

func selectOne(message string, options []string, current string) (string, error) {
	prompt := &survey.Select{Message: message, Options: options}
	if slices.Contains(options, current) {
		prompt.Default = current
	}
	var choice string
	err := survey.AskOne(prompt, &choice)
	return choice, err
}

func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func programText(form url.Values) string {
	times, activities := form["program_time"], form["program_activity"]
	lines := make([]string, 0, len(activities))
	for i, activity := range activities {
		if strings.TrimSpace(activity) == "" {
			continue
		}
		at := ""
		if i < len(times) {
			at = times[i]
		}
		lines = append(lines, strings.TrimSpace(at+" "+activity))
	}
	return strings.Join(lines, "\n")
}

// setProgram writes the edited lines back as the program_time and
// program_activity pairs the page would submit. A line without a leading
// HH:MM keeps an empty time.
func setProgram(form url.Values, text string) {
	form.Del("program_time")
	form.Del("program_activity")
	for _, line := range splitLines(text) {
		at, activity := "", line
		if head, rest, ok := strings.Cut(line, " "); ok && isClock(head) {
			at, activity = head, strings.TrimSpace(rest)
		}
		form.Add("program_time", at)
		form.Add("program_activity", activity)
	}
}

func isClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for i, r := range s {
		if i != 2 && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
