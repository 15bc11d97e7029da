package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/ontomerge/cmd/ontomerge/cmd/cluster"
	"github.com/agentstation/ontomerge/cmd/ontomerge/cmd/diff"
	"github.com/agentstation/ontomerge/cmd/ontomerge/cmd/merge"
	"github.com/agentstation/ontomerge/cmd/ontomerge/cmd/validate"
	"github.com/agentstation/ontomerge/cmd/ontomerge/cmd/version"
)

// NewMergeCommand creates the merge command with app dependencies.
func (a *App) NewMergeCommand() *cobra.Command {
	return merge.NewCommand(a)
}

// NewClusterCommand creates the cluster command with app dependencies.
func (a *App) NewClusterCommand() *cobra.Command {
	return cluster.NewCommand(a)
}

// NewDiffCommand creates the diff command with app dependencies.
func (a *App) NewDiffCommand() *cobra.Command {
	return diff.NewCommand(a)
}

// NewValidateCommand creates the validate command with app dependencies.
func (a *App) NewValidateCommand() *cobra.Command {
	return validate.NewCommand(a)
}

// NewVersionCommand creates the version command with app dependencies.
func (a *App) NewVersionCommand() *cobra.Command {
	return version.NewCommand(a)
}
