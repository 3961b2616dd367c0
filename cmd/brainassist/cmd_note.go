package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/brainassist/internal/app"
	"github.com/user/brainassist/internal/types"
)

func init() {
	rootCmd.AddCommand(noteCmd)
	noteCmd.AddCommand(noteAddCmd, noteListCmd, noteShowCmd, noteRemoveCmd)

	noteAddCmd.Flags().String("title", "", "note title")
	noteAddCmd.Flags().String("file", "", "read the HTML body from a file")
}

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add [html]",
	Short: "Add a note; tags are suggested by the model",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		file, _ := cmd.Flags().GetString("file")
		var body string
		switch {
		case file != "":
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read note: %w", err)
			}
			body = string(data)
		case len(args) == 1:
			body = args[0]
		default:
			return fmt.Errorf("pass the body or --file")
		}
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			n, err := shell.SaveNote(ctx, title, body)
			if err != nil {
				return fmt.Errorf("add note: %w", err)
			}
			fmt.Fprintf(os.Stdout, "Note %q saved (%s) tags: %s\n", n.Title, n.ID, strings.Join(n.Tags, ", "))
			return nil
		})
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			notes, err := shell.Notes(ctx)
			if err != nil {
				return fmt.Errorf("list notes: %w", err)
			}
			if len(notes) == 0 {
				fmt.Println("No notes.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tTAGS\tUPDATED")
			for _, n := range notes {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.ID, n.Title, strings.Join(n.Tags, ","), n.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		})
	},
}

var noteShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a note as markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			md, err := shell.NoteMarkdown(ctx, types.NoteID(args[0]))
			if err != nil {
				return err
			}
			fmt.Println(md)
			return nil
		})
	},
}

var noteRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			if _, err := shell.DeleteNote(ctx, types.NoteID(args[0])); err != nil {
				return fmt.Errorf("remove note: %w", err)
			}
			fmt.Fprintf(os.Stdout, "Note %s removed.\n", args[0])
			return nil
		})
	},
}
