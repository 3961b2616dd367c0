package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/brainassist/internal/app"
	"github.com/user/brainassist/internal/modes"
	"github.com/user/brainassist/internal/stream"
	"github.com/user/brainassist/internal/types"
)

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectAddCmd, projectListCmd, projectOpenCmd, projectRemoveCmd)

	projectAddCmd.Flags().String("description", "", "project description")
	projectAddCmd.Flags().String("mode", string(types.ModeLearning), "chat mode for the project")
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, _ := cmd.Flags().GetString("description")
		modeFlag, _ := cmd.Flags().GetString("mode")
		mode, err := modes.Parse(modeFlag)
		if err != nil {
			return err
		}
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			p, err := shell.SaveProject(ctx, args[0], desc, mode)
			if err != nil {
				return fmt.Errorf("add project: %w", err)
			}
			fmt.Fprintf(os.Stdout, "Project %q added (%s).\n", p.Title, p.ID)
			return nil
		})
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			list, err := shell.Projects(ctx)
			if err != nil {
				return fmt.Errorf("list projects: %w", err)
			}
			if len(list) == 0 {
				fmt.Println("No projects.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tMODE\tCREATED")
			for _, p := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Mode, p.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		})
	},
}

var projectOpenCmd = &cobra.Command{
	Use:   "open <id>",
	Short: "Open a project in its mode and send its starter prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			id := types.ProjectID(args[0])
			if _, err := shell.Project(ctx, id); err != nil {
				return err
			}
			r := newRepl(shell)
			r.turn(ctx, func(ctx context.Context) (stream.Outcome, error) {
				return shell.OpenProject(ctx, id)
			})
			return nil
		})
	},
}

var projectRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			if _, err := shell.DeleteProject(ctx, types.ProjectID(args[0])); err != nil {
				return fmt.Errorf("remove project: %w", err)
			}
			fmt.Fprintf(os.Stdout, "Project %s removed.\n", args[0])
			return nil
		})
	},
}
