package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/markstack/pkg/presets"
)

// presetsCommand creates the presets command for inspecting presets.
func (c *CLI) presetsCommand() *cobra.Command {
	var presetsFile string

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List and inspect watermark presets",
		Long: `List and inspect watermark presets.

Built-in presets are overlaid with the user presets file, if present.
A user preset with a built-in name changes only the keys it sets.`,
	}
	cmd.PersistentFlags().StringVar(&presetsFile, "presets", "", "presets TOML file (default: user config presets.toml)")

	cmd.AddCommand(c.presetsListCommand(&presetsFile))
	cmd.AddCommand(c.presetsShowCommand(&presetsFile))
	cmd.AddCommand(c.presetsPathCommand())

	return cmd
}

// presetsListCommand creates the "presets list" subcommand.
func (c *CLI) presetsListCommand(presetsFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := loadPresets(*presetsFile)
			if err != nil {
				return err
			}
			fmt.Println(presetTable(set))
			return nil
		},
	}
}

// presetsShowCommand creates the "presets show" subcommand.
func (c *CLI) presetsShowCommand(presetsFile *string) *cobra.Command {
	return &cobra.Command{
		Use:               "show NAME",
		Short:             "Print a preset as TOML",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completePresets,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := loadPresets(*presetsFile)
			if err != nil {
				return err
			}
			p, err := set.Get(args[0])
			if err != nil {
				return err
			}
			return writePresetTOML(os.Stdout, p)
		},
	}
}

// presetsPathCommand creates the "presets path" subcommand.
func (c *CLI) presetsPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the user presets file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := presets.UserPath()
			if err != nil {
				return fmt.Errorf("get config dir: %w", err)
			}
			fmt.Println(path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				printDetail("File does not exist; built-in presets only")
			}
			return nil
		},
	}
}

// presetTable renders every preset as a table in name order.
func presetTable(set presets.Set) string {
	rows := [][]string{}
	for _, name := range set.Names() {
		p := set[name]
		p.Name = name
		rows = append(rows, presetRow("", p)[1:])
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Preset", "Type", "Numbering", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col == 3:
				return StyleDim
			}
			return StyleValue
		}).
		Render()
}

// writePresetTOML writes p as a presets file section. Unset keys are omitted.
func writePresetTOML(w io.Writer, p presets.Preset) error {
	return toml.NewEncoder(w).Encode(map[string]presets.Preset{p.Name: p})
}

func completePresets(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	set, err := loadPresets("")
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return set.Names(), cobra.ShellCompDirectiveNoFileComp
}
