package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ErykKul/DataSync/internal/diff"
	"github.com/ErykKul/DataSync/internal/submit"
	"github.com/ErykKul/DataSync/internal/util"
)

var planCmd = &cobra.Command{
	Use:   "plan <file>",
	Short: "Show or submit a saved action plan",
	Long: `Print the summary of a plan written by 'dsync compare --plan-out'.
With --submit the plan is sent to the comparison service configured in .dsync.toml.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().Bool("submit", false, "Submit the plan to the service")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cwd, err := getCwd()
	if err != nil {
		return err
	}
	configPath, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")
	doSubmit, _ := cmd.Flags().GetBool("submit")

	env := util.NewOsEnv()
	return planWith(cmd.Context(), env, cwd, cmd.OutOrStdout(), args[0], configPath, logLevel, doSubmit)
}

func planWith(ctx context.Context, env *util.Env, cwd string, w io.Writer, planPath, configPath, logLevel string, doSubmit bool) error {
	if !filepath.IsAbs(planPath) {
		planPath = filepath.Join(cwd, planPath)
	}
	plan, err := submit.ReadPlan(env.Fs, planPath)
	if err != nil {
		return err
	}
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}

	printPlan(w, plan)
	if !doSubmit {
		return nil
	}

	cfg, err := loadConfig(env, cwd, configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, logLevel)
	if err != nil {
		return err
	}
	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}

	s := &submit.APISubmitter{
		Client:   client,
		Template: storeRequest(cfg, cfg.Credentials(env.Getenv)),
		Log:      log.Named("submit"),
	}
	if err := s.Submit(ctx, plan); err != nil {
		return err
	}
	util.ProgressDone(w, "Plan %s submitted\n", plan.ID)
	if s.Response != nil && s.Response.URL != "" {
		util.Progress(w, "  Follow progress at %s\n", s.Response.URL)
	}
	return nil
}

func printPlan(w io.Writer, plan *submit.Plan) {
	_, _ = fmt.Fprintf(w, "Plan:    %s\n", plan.ID)
	_, _ = fmt.Fprintf(w, "Job:     %s\n", plan.JobID)
	_, _ = fmt.Fprintf(w, "Created: %s\n", plan.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	_, _ = fmt.Fprintf(w, "Mode:    %s\n", plan.Mode)

	pending := plan.Pending()
	_, _ = fmt.Fprintf(w, "Pending: %d of %d files\n", len(pending), len(plan.Records))
	for _, rec := range pending {
		_, _ = fmt.Fprintf(w, "  %-7s %s\n", rec.Action, rec.ID)
	}
	if len(pending) == 0 {
		_, _ = fmt.Fprintf(w, "  (%s for every file)\n", diff.ActionIgnore)
	}
}
