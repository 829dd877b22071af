package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/benchmark-cli/internal/config"
)

var cfg *config.Config

var (
	cfgFile      string
	templatesDir string
	logLevel     string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&templatesDir, "templates-dir", "", "directory of reference templates (overrides templates.dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides log.level)")
}

// applyFlagOverrides lets root flags win over file and environment settings.
func applyFlagOverrides(c *config.Config) {
	if templatesDir != "" {
		c.Templates.Dir = templatesDir
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
}

var rootCmd = &cobra.Command{
	Use:   "benchmark-cli",
	Short: "IT due-diligence benchmark comparison engine",
	Long:  "Compares a target company's extracted IT profile, application inventory and organization against industry reference templates and produces a deterministic, provenance-tracked benchmark report.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadFile(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyFlagOverrides(c)
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
