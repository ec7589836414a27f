package commands

import (
	"github.com/spf13/cobra"
)

// VersionInfo is printed by the version command.
type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit"  yaml:"commit"`
	Built   string `json:"built"   yaml:"built"`
}

// NewVersionCommand creates the version command
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the nimbus CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer := &OutputRenderer[VersionInfo]{RenderTable: func(info VersionInfo) error {
				table := newTable("Property", "Value")
				_ = table.Append("Version", info.Version)
				_ = table.Append("Commit", info.Commit)
				_ = table.Append("Built", info.Built)

				return renderTable(table)
			}}

			return renderer.Render(VersionInfo{Version: version, Commit: commit, Built: date})
		},
	}
}
