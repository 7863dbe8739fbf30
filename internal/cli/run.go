package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/markstack/pkg/pipeline"
)

// runCommand creates the run command for watermarking a single folder.
func (c *CLI) runCommand() *cobra.Command {
	var (
		input       string
		output      string
		preset      string
		presetsFile string
		workers     int
		recursive   bool
		dryRun      bool
		noCache     bool
		marks       markFlags
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watermark every image in a folder",
		Long: `Watermark every image in a folder with a graphic or text mark.

Style flags override the preset named by --preset; without a preset the
flags alone describe the watermark and one of --graphic or --text is required.
Output files mirror the input tree. WebP input is written as PNG.`,
		Example: `  # Graphic watermark bottom-right with numbering
  markstack run -i photos -o marked --graphic logo.png --graphic-position bottom-right --numbering

  # Text watermark with a Google font
  markstack run -i photos -o marked --text "© K1 2024" --google-font Roboto

  # Built-in preset with a different margin
  markstack run -i photos -o marked --preset final_v2 --margin 40`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			set, err := loadPresets(presetsFile)
			if err != nil {
				return err
			}
			p, err := marks.resolvePreset(cmd, set, preset)
			if err != nil {
				return err
			}

			runner, fc, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer fc.Close()

			engine, err := runner.PresetEngine(ctx, p)
			if err != nil {
				return err
			}
			logger.Debug("engine ready", "preset", p.Name, "kind", p.Kind())

			spinner := newSpinnerWithContext(ctx, "Marking images...")
			defer trackProgress(newBatchProgress(spinner, 0))()
			prog := newProgress(logger)
			spinner.Start()
			report, err := runner.Run(ctx, engine, pipeline.Options{
				Input:     input,
				Output:    output,
				Recursive: recursive,
				Workers:   workers,
				DryRun:    dryRun,
			})
			if report == nil {
				spinner.StopWithError("Batch did not start")
				return err
			}
			spinner.Stop()

			if len(report.Records) == 0 {
				printWarning("No images found in %s", input)
				return err
			}
			printReport(report)
			if err != nil {
				return err
			}
			if dryRun {
				printNextStep("Run without --dry-run to write files", "markstack run -i "+input+" -o "+output)
				return nil
			}
			prog.done(fmt.Sprintf("Marked %d images", report.Succeeded))
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d images failed", report.Failed, len(report.Records))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "input folder")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output folder")
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "preset to start from")
	cmd.Flags().StringVar(&presetsFile, "presets", "", "presets TOML file (default: user config presets.toml)")
	cmd.Flags().IntVarP(&workers, "workers", "w", pipeline.DefaultWorkers(), "images processed at once")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "include images in subfolders")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list planned outputs without writing")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the font download cache")
	marks.register(cmd)

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	_ = cmd.MarkFlagDirname("input")
	_ = cmd.MarkFlagDirname("output")
	_ = cmd.RegisterFlagCompletionFunc("preset", completePresets)

	return cmd
}
