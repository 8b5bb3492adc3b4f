// Package cli wires the rex command line.
package cli

import (
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"github.com/lumipallolabs/rex/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagDebug      bool
	flagCPUProfile string

	stopProfile = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "rex",
	Short: "Recover files from raw devices and disk images",
	Long: `rex scans a block device or disk image for known file signatures and copies
a fixed-size block at every hit into a fresh session directory. Unless told
otherwise it also mirrors the files still visible on the live filesystem.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: startProfile,
}

// Execute runs the rex CLI. It should be called by the main package.
func Execute() {
	err := rootCmd.Execute()
	stopProfile()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "append debug logs to "+logging.DefaultFile)
	rootCmd.PersistentFlags().StringVar(&flagCPUProfile, "cpuprofile", "", "write a CPU profile to this file")
	_ = rootCmd.PersistentFlags().MarkHidden("cpuprofile")

	rootCmd.AddCommand(carveCmd)
	rootCmd.AddCommand(versionCmd)
}

func startProfile(cmd *cobra.Command, args []string) error {
	if flagCPUProfile == "" {
		return nil
	}
	f, err := os.Create(flagCPUProfile)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("could not start CPU profile: %w", err)
	}
	log.Printf("CPU profiling enabled, writing to %s", flagCPUProfile)
	stopProfile = func() {
		pprof.StopCPUProfile()
		f.Close()
	}
	return nil
}
