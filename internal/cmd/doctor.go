package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docflow/atlasmigrate/internal/observability"
	"github.com/docflow/atlasmigrate/pkg/mongotools"
	"github.com/docflow/atlasmigrate/pkg/preflight"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long: `Run diagnostic checks on the system and suggest fixes for common issues.

Examples:
  atlasmigrate doctor    # Full environment check`,
	Run: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) {
	observability.CLILogger.Info("=== atlasmigrate doctor ===")
	observability.CLILogger.Info("")
	observability.CLILogger.Info("Running diagnostic checks...")
	observability.CLILogger.Info("")

	allChecks := true
	checkNum := 1
	totalChecks := 3 + len(mongotools.RequiredTools)

	// Check 1: Go version
	goVersion := runtime.Version()
	observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking Go version... ✅ %s", checkNum, totalChecks, goVersion),
		zap.String("go_version", goVersion))
	checkNum++

	// Checks 2-4: MongoDB tools
	res := preflight.Check(mongotools.ExecRunner{})
	for _, check := range res.Checks {
		if check.Found {
			observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking %s... ✅ %s", checkNum, totalChecks, check.Tool, check.Path),
				zap.String("tool", check.Tool),
				zap.String("path", check.Path))
		} else {
			observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking %s... ❌ not found on PATH", checkNum, totalChecks, check.Tool),
				zap.String("tool", check.Tool))
			allChecks = false
		}
		checkNum++
	}
	if !res.OK() {
		printToolInstallHelp()
	}

	// Check 5: Config directory
	configDir, err := os.UserConfigDir()
	if err != nil {
		observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking config directory... ❌ Cannot find config directory", checkNum, totalChecks),
			zap.Error(err))
		allChecks = false
	} else {
		observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking config directory... ✅ %s", checkNum, totalChecks, configDir),
			zap.String("config_dir", configDir))
	}
	checkNum++

	// Check 6: Environment
	observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking environment... ✅ %s/%s", checkNum, totalChecks, runtime.GOOS, runtime.GOARCH),
		zap.String("os", runtime.GOOS),
		zap.String("arch", runtime.GOARCH))

	observability.CLILogger.Info("")
	if allChecks {
		observability.CLILogger.Info("✅ All checks passed! Your atlasmigrate installation is healthy.")
	} else {
		observability.CLILogger.Warn("⚠️  Some checks failed. Review the output above for details.")
	}
	observability.CLILogger.Info("")
	observability.CLILogger.Info("=== End Diagnostics ===")
}

// printToolInstallHelp prints help for installing the MongoDB tools.
func printToolInstallHelp() {
	observability.CLILogger.Info("")
	observability.CLILogger.Info("To install the MongoDB tools:")
	observability.CLILogger.Info("  1. mongodump/mongorestore ship with MongoDB Database Tools:")
	observability.CLILogger.Info("     https://www.mongodb.com/docs/database-tools/installation/")
	observability.CLILogger.Info("  2. mongosh is the MongoDB Shell:")
	observability.CLILogger.Info("     https://www.mongodb.com/docs/mongodb-shell/install/")
	observability.CLILogger.Info("")
}
