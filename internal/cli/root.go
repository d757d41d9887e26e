package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ErykKul/DataSync/internal/config"
)

var (
	// Version, Commit, and Date are set at build time via ldflags
	Version = "dev"
	Commit  = ""
	Date    = ""
)

var rootCmd = &cobra.Command{
	Use:   "dsync",
	Short: "dsync - reconcile a dataset with a source repository",
	Long: `dsync compares the files of a Dataverse dataset with a source repository,
shows the differences as a folder tree, and submits the actions you select
(copy new files, update changed ones, delete removed ones).`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetRootCmd returns the root command for documentation generation.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("dsync version %s\ncommit: %s\ndate: %s\n", Version, Commit, Date))

	rootCmd.PersistentFlags().StringP("config", "c", config.FileName, "Path to the configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides the config")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(planCmd)
}
