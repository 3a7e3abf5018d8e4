package main

import (
	"os"

	"github.com/spacesedan/reviewseed/config"
	"github.com/spacesedan/reviewseed/internal/logging"
	"github.com/spf13/cobra"
)

const (
	exitSuccess = 0
	exitError   = 1
	exitUsage   = 2
)

var rootCmd = &cobra.Command{
	Use:           "seeder",
	Short:         "Generate synthetic Vietnamese product reviews",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "dev"
		}
		config.LoadEnv(env)
		logging.InitLogger(config.Load().LogLevel)
	},
}

func main() {
	rootCmd.AddCommand(newGenerateCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}
