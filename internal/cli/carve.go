package cli

import (
	"fmt"
	"strings"

	"github.com/lumipallolabs/rex/internal/config"
	"github.com/lumipallolabs/rex/internal/core"
	"github.com/lumipallolabs/rex/internal/live"
	"github.com/lumipallolabs/rex/internal/logging"
	"github.com/lumipallolabs/rex/internal/scanner"
	"github.com/lumipallolabs/rex/internal/session"
	"github.com/lumipallolabs/rex/internal/signature"
	"github.com/lumipallolabs/rex/internal/ui"
	"github.com/spf13/cobra"
)

const carveUsage = "Usage: rex carve <path_to_device_or_img> [--all] [--only-deleted]"

var (
	carveAll         bool
	carveOnlyDeleted bool
	carveProgress    bool
	carveOutput      string
	carveConfig      string
	carveHash        string
	carveExclude     []string

	// newMounter is replaced in tests
	newMounter = live.NewMounter
)

var carveCmd = &cobra.Command{
	Use:   "carve <path>",
	Short: "Carve files out of a device or image",
	Long: `Scan <path> for file signatures and write every hit to
recovered/<session-id>/file_<n>_<offset>.<ext>. At most 10 files are carved
unless --all is given. Without --only-deleted the image is then mounted
read-only and its live files are copied next to the carved ones.`,
	Args: cobra.ArbitraryArgs,
	RunE: runCarve,
}

func init() {
	carveCmd.Flags().BoolVar(&carveAll, "all", false, "carve every hit instead of stopping after 10 files")
	carveCmd.Flags().BoolVar(&carveOnlyDeleted, "only-deleted", false, "skip the reserved first 512 KiB and the live filesystem copy")
	carveCmd.Flags().BoolVar(&carveProgress, "progress", false, "show an interactive progress view")
	carveCmd.Flags().StringVar(&carveOutput, "output", "", "output root (default \""+session.DefaultRoot+"\")")
	carveCmd.Flags().StringVar(&carveConfig, "config", "", "YAML config file")
	carveCmd.Flags().StringVar(&carveHash, "hash", "", "digest to print for carved files: md5, sha1 or xxh64")
	carveCmd.Flags().StringArrayVar(&carveExclude, "exclude", nil, "glob of live files not to copy (repeatable)")
}

func runCarve(cmd *cobra.Command, args []string) error {
	// the last positional argument is the target
	target := ""
	if len(args) > 0 {
		target = strings.TrimSpace(args[len(args)-1])
	}

	var fcfg config.FileConfig
	if carveConfig != "" {
		c, err := config.LoadFile(carveConfig)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		fcfg = c
	}

	// all: true in the config counts like --all
	if target == "" && !pickBool(carveAll, fcfg.All) {
		fmt.Fprintln(cmd.ErrOrStderr(), carveUsage)
		return nil
	}

	logging.Setup(flagDebug || pickBool(false, fcfg.Debug), logging.DefaultFile)
	logging.SetWarnOutput(cmd.ErrOrStderr())

	opts, err := carveOptions(target, fcfg)
	if err != nil {
		return err
	}

	ctrl := core.NewController(opts)
	if carveProgress {
		_, err = ui.RunProgress(ctrl)
		return err
	}

	console := ui.NewConsole(cmd.OutOrStdout())
	ctrl.OnEvent(console.Handle)
	_, err = ctrl.Run()
	return err
}

// carveOptions merges flags over the config file. Flags win when set.
func carveOptions(target string, fcfg config.FileConfig) (core.Options, error) {
	hash := carveHash
	if hash == "" {
		hash = fcfg.GetHash()
	}
	digest, err := scanner.ParseDigest(hash)
	if err != nil {
		return core.Options{}, err
	}

	exclude := carveExclude
	if len(exclude) == 0 {
		exclude = fcfg.Exclude
	}
	if err := live.ValidateExcludes(exclude); err != nil {
		return core.Options{}, err
	}

	output := carveOutput
	if output == "" {
		output = fcfg.GetOutput(session.DefaultRoot)
	}

	custom, err := fcfg.CustomSignatures()
	if err != nil {
		return core.Options{}, fmt.Errorf("config: %w", err)
	}

	return core.Options{
		Target: target,
		Flags: session.Flags{
			All:         pickBool(carveAll, fcfg.All),
			OnlyDeleted: carveOnlyDeleted,
		},
		OutputRoot: output,
		Detector:   signature.NewDetector(custom...),
		Digest:     digest,
		Mounter:    newMounter(),
		Exclude:    exclude,
	}, nil
}

func pickBool(cli bool, file *bool) bool {
	if cli {
		return true
	}
	return file != nil && *file
}
