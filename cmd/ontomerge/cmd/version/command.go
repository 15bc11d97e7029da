// Package version implements the version command.
package version

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/ontomerge/cmd/application"
	"github.com/agentstation/ontomerge/internal/cmd/cmdutil"
	"github.com/agentstation/ontomerge/internal/cmd/output"
	"github.com/agentstation/ontomerge/pkg/schema"
)

// Info is the structured version output.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	BuiltBy   string `json:"built_by" yaml:"built_by"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
	Schema    string `json:"schema_version" yaml:"schema_version"`
}

// NewCommand creates the version command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cmdutil.OutputFormat(app)
			if err != nil {
				return err
			}
			info := Info{
				Version:   app.Version(),
				Commit:    app.Commit(),
				Date:      app.Date(),
				BuiltBy:   app.BuiltBy(),
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
				Schema:    schema.Version,
			}

			var data any = info
			if format.IsTable() {
				data = output.KeyValues([][2]string{
					{"version", info.Version},
					{"commit", info.Commit},
					{"built", info.Date},
					{"built_by", info.BuiltBy},
					{"go_version", info.GoVersion},
					{"platform", info.Platform},
					{"schema_version", info.Schema},
				})
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
		},
	}
}
