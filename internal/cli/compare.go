package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ErykKul/DataSync/internal/api"
	"github.com/ErykKul/DataSync/internal/compare"
	"github.com/ErykKul/DataSync/internal/config"
	"github.com/ErykKul/DataSync/internal/diff"
	"github.com/ErykKul/DataSync/internal/logging"
	"github.com/ErykKul/DataSync/internal/submit"
	"github.com/ErykKul/DataSync/internal/util"
	"github.com/ErykKul/DataSync/internal/view"
)

const filterAll = "all"

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the dataset with the repository",
	Long: `Start a comparison job on the service, wait for it to finish and print the
differences as a folder tree.

Rows can be filtered by status (--filter) and actions assigned in bulk (--mode).
The resulting plan can be written to a file (--plan-out) or submitted to the
service (--submit). With --interactive the filter and mode are chosen from a menu.`,
	Example: `  dsync compare
  dsync compare --filter new --mode update --plan-out plan.json
  dsync compare --mode mirror --submit
  dsync compare --template '{{ range .Leaves }}{{ .ID }} {{ .Action }}{{ "\n" }}{{ end }}'`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().String("filter", filterAll, "Show only rows with this status (all, new, updated, deleted, equal, unknown)")
	compareCmd.Flags().String("mode", diff.SelectNone.String(), "Assign actions to the visible rows (none, update, mirror)")
	compareCmd.Flags().BoolP("interactive", "i", false, "Choose filter and actions from a menu")
	compareCmd.Flags().Int("refresh-attempts", 0, "Manual refreshes to try after polling gives up when not on a terminal")
	compareCmd.Flags().String("plan-out", "", "Write the action plan to this file")
	compareCmd.Flags().Bool("submit", false, "Submit the action plan to the service")
	compareCmd.Flags().String("template", "", "Format output using a Go template")
}

type compareOptions struct {
	ConfigPath      string
	LogLevel        string
	Filter          string
	Mode            string
	Interactive     bool
	RefreshAttempts int
	PlanOut         string
	Submit          bool
	Template        string
}

// compareDeps are the collaborators of a compare run that tests replace.
type compareDeps struct {
	Env      *util.Env
	Cwd      string
	Out      io.Writer
	Err      io.Writer
	Prompter Prompter
	// Logger overrides the logger built from the config when set.
	Logger *logging.Logger
}

func runCompare(cmd *cobra.Command, args []string) error {
	cwd, err := getCwd()
	if err != nil {
		return err
	}

	var opts compareOptions
	opts.ConfigPath, _ = cmd.Flags().GetString("config")
	opts.LogLevel, _ = cmd.Flags().GetString("log-level")
	opts.Filter, _ = cmd.Flags().GetString("filter")
	opts.Mode, _ = cmd.Flags().GetString("mode")
	opts.Interactive, _ = cmd.Flags().GetBool("interactive")
	opts.RefreshAttempts, _ = cmd.Flags().GetInt("refresh-attempts")
	opts.PlanOut, _ = cmd.Flags().GetString("plan-out")
	opts.Submit, _ = cmd.Flags().GetBool("submit")
	opts.Template, _ = cmd.Flags().GetString("template")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	deps := compareDeps{
		Env:      util.NewOsEnv(),
		Cwd:      cwd,
		Out:      cmd.OutOrStdout(),
		Err:      cmd.ErrOrStderr(),
		Prompter: huhPrompter{},
	}
	return runCompareWith(ctx, deps, opts)
}

// runCompareWith is the testable body of the compare command.
func runCompareWith(ctx context.Context, deps compareDeps, opts compareOptions) error {
	cfg, err := loadConfig(deps.Env, deps.Cwd, opts.ConfigPath)
	if err != nil {
		return err
	}
	mode, err := diff.ParseSelectionMode(opts.Mode)
	if err != nil {
		return err
	}
	if _, err := parseFilter(opts.Filter); err != nil {
		return err
	}
	if opts.Interactive && !deps.Env.IsTerminal() {
		return errors.New(ErrMsgNotTerminal)
	}

	log := deps.Logger
	if log == nil {
		if log, err = newLogger(cfg, opts.LogLevel); err != nil {
			return err
		}
	}

	creds := cfg.Credentials(deps.Env.Getenv)
	if creds.DataverseToken == "" {
		log.Warn().Str("env", cfg.Dataset.TokenEnv).Msg("dataset token not set")
	}
	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}

	snap, err := awaitComparison(ctx, deps, opts, cfg, creds, client, log)
	if err != nil {
		return err
	}
	if snap.Err != nil {
		util.ProgressWarn(deps.Err, "Showing previous results: %v\n", snap.Err)
	}

	tree := snap.Tree
	if tree == nil {
		util.ProgressDone(deps.Err, "No files to compare\n")
		view.RenderRejected(deps.Out, snap.Result)
		if opts.Submit || opts.PlanOut != "" {
			return errors.New(ErrMsgNothingToShow)
		}
		return nil
	}

	if err := applyFilter(tree, opts.Filter); err != nil {
		return err
	}
	tree.ApplySelection(mode)
	if tree.Visible() == 0 {
		util.ProgressWarn(deps.Err, "No rows match --filter %s\n", opts.Filter)
	}

	submitAPI := opts.Submit
	if opts.Interactive {
		var confirmed bool
		mode, confirmed, err = runSession(deps, tree, mode)
		if err != nil {
			return err
		}
		if !confirmed {
			util.Progress(deps.Err, "Nothing submitted\n")
			return nil
		}
		submitAPI = true
	} else if err := renderComparison(deps.Out, opts.Template, snap); err != nil {
		return err
	}

	var submitters submit.Multi
	if opts.PlanOut != "" {
		path := opts.PlanOut
		if !filepath.IsAbs(path) {
			path = filepath.Join(deps.Cwd, path)
		}
		submitters = append(submitters, submit.FileSubmitter{Fs: deps.Env.Fs, Path: path})
	}
	var apiSubmitter *submit.APISubmitter
	if submitAPI {
		apiSubmitter = &submit.APISubmitter{Client: client, Template: storeRequest(cfg, creds), Log: log.Named("submit")}
		submitters = append(submitters, apiSubmitter)
	}
	if len(submitters) == 0 {
		return nil
	}

	plan := submit.NewPlan(snap.Result.ID, mode, tree)
	if err := submitters.Submit(ctx, plan); err != nil {
		return err
	}
	if opts.PlanOut != "" {
		util.ProgressDone(deps.Err, "Plan written to %s (%d pending)\n", opts.PlanOut, len(plan.Pending()))
	}
	if apiSubmitter != nil {
		util.ProgressDone(deps.Err, "Plan %s submitted (%d pending)\n", plan.ID, len(plan.Pending()))
		if res := apiSubmitter.Response; res != nil && res.URL != "" {
			util.Progress(deps.Err, "  Follow progress at %s\n", res.URL)
		}
	}
	return nil
}

// awaitComparison drives the coordinator until the comparison is
// interactive, falling back to manual refreshes when polling times out.
func awaitComparison(ctx context.Context, deps compareDeps, opts compareOptions, cfg *config.Config, creds config.Credentials, client *api.Client, log *logging.Logger) (compare.Snapshot, error) {
	source := api.NewCompareSource(client, compareRequest(cfg, creds))
	coord := compare.NewCoordinator(source, client.Poller(cfg.Dataset.PersistentID, creds.DataverseToken),
		compare.WithInterval(cfg.Polling.Interval()),
		compare.WithMaxAttempts(cfg.Polling.MaxAttempts),
		compare.WithLogger(log.Named("poller")),
		compare.WithOnChange(progressReporter(deps.Err, cfg.Polling.MaxAttempts)),
	)

	util.ProgressStep(deps.Err, "Comparing %s/%s with %s\n", cfg.Repo.Owner, cfg.Repo.Name, cfg.Dataset.PersistentID)
	if err := coord.Run(ctx); err != nil {
		if errors.Is(err, compare.ErrSourceClosed) {
			if serr := source.Err(); serr != nil {
				return compare.Snapshot{}, fmt.Errorf("comparison failed: %w", serr)
			}
		}
		return compare.Snapshot{}, err
	}

	snap := coord.Snapshot()
	if snap.Phase == compare.PhaseLoading {
		return snap, errors.New(ErrMsgNoData)
	}
	if snap.RefreshAvailable() {
		var err error
		if snap, err = refreshLoop(ctx, deps, opts, coord, snap, cfg.Polling.Interval()); err != nil {
			return snap, err
		}
	}
	if !snap.Interactive() {
		return snap, errors.New(ErrMsgStillUpdating)
	}
	return snap, nil
}

// refreshLoop issues manual refreshes after polling timed out. On a terminal
// the user confirms each one; otherwise up to opts.RefreshAttempts are made,
// one interval apart.
func refreshLoop(ctx context.Context, deps compareDeps, opts compareOptions, coord *compare.Coordinator, snap compare.Snapshot, interval time.Duration) (compare.Snapshot, error) {
	for i := 0; snap.RefreshAvailable(); i++ {
		if deps.Env.IsTerminal() {
			ok, err := deps.Prompter.ConfirmRefresh(snap.Attempts)
			if err != nil {
				return snap, err
			}
			if !ok {
				return snap, nil
			}
		} else {
			if i >= opts.RefreshAttempts {
				return snap, nil
			}
			select {
			case <-ctx.Done():
				return snap, ctx.Err()
			case <-time.After(interval):
			}
		}

		util.ProgressStep(deps.Err, "Refreshing comparison\n")
		next, err := coord.Refresh(ctx)
		if api.IsNotFound(err) {
			return snap, fmt.Errorf("comparison job %s no longer exists on the service: %w", jobID(snap), err)
		}
		if err != nil {
			util.ProgressWarn(deps.Err, "%v\n", err)
			continue
		}
		snap = next
	}
	return snap, nil
}

func jobID(snap compare.Snapshot) string {
	if snap.Result == nil {
		return ""
	}
	return snap.Result.ID
}

// progressReporter prints phase transitions and poll attempts.
func progressReporter(w io.Writer, maxAttempts int) func(compare.Snapshot) {
	last := compare.Phase(-1)
	lastAttempts := 0
	return func(s compare.Snapshot) {
		switch s.Phase {
		case compare.PhasePolling:
			if last != compare.PhasePolling {
				util.ProgressStep(w, "Comparison job is running, waiting for results\n")
			} else if s.Attempts != lastAttempts {
				util.ProgressStep(w, "Still running (check %d/%d)\n", s.Attempts, maxAttempts)
			}
		case compare.PhaseInteractive:
			if last != compare.PhaseInteractive {
				util.ProgressDone(w, "Comparison loaded\n")
			}
		case compare.PhaseTimedOut:
			if last != compare.PhaseTimedOut {
				util.ProgressWarn(w, "Comparison still running after %d checks\n", s.Attempts)
			}
		}
		last, lastAttempts = s.Phase, s.Attempts
	}
}

// parseFilter returns the status to show, or nil for all rows.
func parseFilter(filter string) (*diff.Status, error) {
	if filter == "" || filter == filterAll {
		return nil, nil
	}
	s, err := diff.ParseStatus(filter)
	if err != nil {
		return nil, fmt.Errorf("invalid --filter: %w", err)
	}
	return &s, nil
}

func applyFilter(tree *diff.Tree, filter string) error {
	s, err := parseFilter(filter)
	if err != nil {
		return err
	}
	if s == nil {
		tree.ShowAll()
	} else {
		tree.ShowOnly(*s)
	}
	return nil
}

func renderComparison(w io.Writer, tplStr string, snap compare.Snapshot) error {
	if tplStr != "" {
		return view.RenderTemplate(w, tplStr, view.NewTemplateData(snap))
	}
	view.RenderTree(w, snap.Tree)
	_, _ = fmt.Fprintln(w)
	view.RenderSummary(w, snap.Tree)
	view.RenderRejected(w, snap.Result)
	return nil
}

// runSession shows the tree and applies menu choices until the user submits
// or quits. It returns the final selection mode.
func runSession(deps compareDeps, tree *diff.Tree, mode diff.SelectionMode) (diff.SelectionMode, bool, error) {
	for {
		view.RenderTree(deps.Out, tree)
		_, _ = fmt.Fprintln(deps.Out)
		view.RenderSummary(deps.Out, tree)

		choice, err := deps.Prompter.Menu()
		if err != nil {
			return mode, false, err
		}
		switch choice {
		case choiceFilter:
			filter, err := deps.Prompter.SelectFilter()
			if err != nil {
				return mode, false, err
			}
			if err := applyFilter(tree, filter); err != nil {
				return mode, false, err
			}
		case choiceMode:
			name, err := deps.Prompter.SelectMode()
			if err != nil {
				return mode, false, err
			}
			if mode, err = diff.ParseSelectionMode(name); err != nil {
				return mode, false, err
			}
			tree.ApplySelection(mode)
		case choiceSubmit:
			return mode, true, nil
		default:
			return mode, false, nil
		}
	}
}
