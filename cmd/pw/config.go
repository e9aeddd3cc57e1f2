package main

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matsen/pubwatch/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with the current settings",
	Long: `Write the effective configuration (defaults, file and environment) as
YAML. The default path is ./pubwatch.yml.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	Run:   runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	path := config.FileName
	if len(args) == 1 {
		path = config.ExpandPath(args[0])
	}

	if _, err := os.Stat(path); err == nil && !configInitForce {
		exitWithError(ExitConfigError, "%s already exists (use --force to overwrite)", path)
	}
	if err := cfg.Save(path); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		outputHuman("Wrote %s\n", path)
	} else {
		outputJSON(StatusResponse{Status: "written", Path: path})
	}
}

func runConfigShow(cmd *cobra.Command, args []string) {
	if !humanOutput {
		outputJSON(cfg)
		return
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		exitWithError(ExitError, "encoding config: %v", err)
	}
	outputHuman("%s", data)
}
