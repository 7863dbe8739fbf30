package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/markstack/pkg/errors"
	mio "github.com/matzehuels/markstack/pkg/io"
	"github.com/matzehuels/markstack/pkg/pipeline"
	"github.com/matzehuels/markstack/pkg/presets"
)

// foldersCommand creates the folders command for watermarking every subfolder
// of a base folder with one preset.
func (c *CLI) foldersCommand() *cobra.Command {
	var (
		opts        pipeline.FolderOptions
		presetsFile string
		pick        bool
		noCache     bool
		marks       markFlags
	)

	cmd := &cobra.Command{
		Use:   "folders",
		Short: "Watermark every subfolder with one preset",
		Long: `Watermark every subfolder of --base-input with one preset.

Each subfolder SUB is written to BASE_OUTPUT/SUB_PRESET. Up to --parallel
folders run at once. Style flags override individual preset keys.`,
		Example: `  # Run the final_v2 preset over every shoot
  markstack folders --base-input shoots --base-output out --preset final_v2

  # Choose the preset interactively
  markstack folders --base-input shoots --base-output out --pick`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			set, err := loadPresets(presetsFile)
			if err != nil {
				return err
			}
			if pick {
				name, err := pickPreset(ctx, set)
				if err != nil {
					return err
				}
				if name == "" {
					printInfo("No preset selected")
					return nil
				}
				opts.Preset = name
			}
			if opts.Preset == "" {
				return errors.New(errors.ErrCodeInvalidInput, "a preset is required (use --preset or --pick)")
			}
			p, err := marks.resolvePreset(cmd, set, opts.Preset)
			if err != nil {
				return err
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
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

			subs, err := mio.Subdirs(opts.BaseInput)
			if err != nil {
				return err
			}
			spinner := newSpinnerWithContext(ctx, "Marking folders...")
			untrack := trackProgress(newBatchProgress(spinner, len(subs)))
			prog := newProgress(logger)
			spinner.Start()
			reports, err := runner.RunFolders(ctx, engine, opts)
			untrack()
			if err != nil {
				spinner.StopWithError("Folders did not start")
				return err
			}
			spinner.StopWithSuccess(fmt.Sprintf("Processed %d folders", len(reports)))

			failed := printFolderReports(reports)
			if opts.DryRun {
				return nil
			}
			prog.done(fmt.Sprintf("Marked %d folders with %s", len(reports)-failed, opts.Preset))
			if failed > 0 {
				return fmt.Errorf("%d of %d folders had failures", failed, len(reports))
			}
			return ctx.Err()
		},
	}

	cmd.Flags().StringVar(&opts.BaseInput, "base-input", "", "folder whose subfolders hold the images")
	cmd.Flags().StringVar(&opts.BaseOutput, "base-output", "", "folder that receives one output folder per subfolder")
	cmd.Flags().StringVarP(&opts.Preset, "preset", "p", "", "preset applied to every folder")
	cmd.Flags().StringVar(&presetsFile, "presets", "", "presets TOML file (default: user config presets.toml)")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", pipeline.DefaultParallel, "folders processed at once")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", pipeline.DefaultWorkers(), "images processed at once per folder")
	cmd.Flags().BoolVarP(&opts.Recursive, "recursive", "r", false, "include images in nested folders")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "list planned outputs without writing")
	cmd.Flags().BoolVar(&pick, "pick", false, "choose the preset interactively")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the font download cache")
	marks.register(cmd)

	_ = cmd.MarkFlagRequired("base-input")
	_ = cmd.MarkFlagRequired("base-output")
	_ = cmd.MarkFlagDirname("base-input")
	_ = cmd.MarkFlagDirname("base-output")
	cmd.MarkFlagsMutuallyExclusive("preset", "pick")
	_ = cmd.RegisterFlagCompletionFunc("preset", completePresets)

	return cmd
}

// pickPreset runs the interactive preset list. An empty name means the user
// quit without choosing.
func pickPreset(ctx context.Context, set presets.Set) (string, error) {
	final, err := tea.NewProgram(NewPresetListModel(set), tea.WithContext(ctx)).Run()
	if err != nil {
		return "", fmt.Errorf("preset picker: %w", err)
	}
	m, ok := final.(PresetListModel)
	if !ok || m.Selected == nil {
		return "", nil
	}
	return m.Selected.Name, nil
}

// printFolderReports prints one block per folder and returns how many
// folders failed to start or had failing images.
func printFolderReports(reports []pipeline.FolderReport) int {
	failed := 0
	for _, fr := range reports {
		printInfo("%s", StyleHighlight.Render(fr.Folder))
		if fr.Report != nil && len(fr.Report.Records) > 0 {
			printReport(fr.Report)
		}
		if fr.Error != "" {
			printError("%s", fr.Error)
		}
		if fr.Error != "" || (fr.Report != nil && fr.Report.Failed > 0) {
			failed++
		}
	}
	return failed
}
