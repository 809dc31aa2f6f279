package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/ccheck/lint"
)

var forceInit bool

// initCmd: ccheck init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		path := cfgFile
		if path == "" {
			path = lint.DefaultConfigFile
		}
		if err := initConfigurationFile(path, forceInit); err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			os.Exit(1)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", path)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing configuration file")
}

// initConfigurationFile writes the default configuration, listing every
// diagnostic code with its default severity.
func initConfigurationFile(configurationPath string, force bool) error {
	if !force {
		if _, err := os.Stat(configurationPath); err == nil {
			return fmt.Errorf("%s already exists", configurationPath)
		}
	}
	return lint.WriteConfig(configurationPath, lint.DefaultConfig())
}
