// Package cmd holds the codeblink command tree.
package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Rhishavhere/codeblink/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "codeblink [file]",
	Short: "Write programs in plain English and run them",
	Long: `codeblink turns a natural-language description of a program into a
Python script with a hosted model, saves it next to your source file and
runs it in a new terminal window.

Without a subcommand it opens the editor, like 'codeblink edit'.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runEdit,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every subcommand.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/codeblink/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CODEBLINK")
	// e.g. CODEBLINK_LAUNCHER_TERMINAL for launcher.terminal
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
