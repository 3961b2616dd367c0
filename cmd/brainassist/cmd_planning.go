package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/brainassist/internal/app"
	"github.com/user/brainassist/internal/types"
)

func init() {
	rootCmd.AddCommand(taskCmd, timetableCmd)
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskDoneCmd, taskRemoveCmd)
	timetableCmd.AddCommand(timetableShowCmd, timetableSetCmd)

	taskAddCmd.Flags().String("comment", "", "free-form comment")
	taskAddCmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	taskAddCmd.Flags().String("priority", string(types.PriorityMedium), "high, medium or low")
	timetableSetCmd.Flags().String("file", "", "read the timetable from a file (- for stdin)")
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage planning tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comment, _ := cmd.Flags().GetString("comment")
		due, _ := cmd.Flags().GetString("due")
		priority, _ := cmd.Flags().GetString("priority")
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			t, err := shell.AddTask(ctx, args[0], comment, due, types.Priority(priority))
			if err != nil {
				return fmt.Errorf("add task: %w", err)
			}
			fmt.Fprintf(os.Stdout, "Task %q added (%s).\n", t.Title, t.ID)
			return nil
		})
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			tasks, err := shell.Tasks(ctx)
			if err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}
			if len(tasks) == 0 {
				fmt.Println("No tasks.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDONE\tPRIORITY\tDUE\tTITLE")
			for _, t := range tasks {
				check := " "
				if t.IsCompleted {
					check = "x"
				}
				fmt.Fprintf(w, "%s\t[%s]\t%s\t%s\t%s\n", t.ID, check, t.Priority, t.DueDate, t.Title)
			}
			return w.Flush()
		})
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Toggle a task's completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			tasks, err := shell.ToggleTask(ctx, types.TaskID(args[0]))
			if err != nil {
				return fmt.Errorf("toggle task: %w", err)
			}
			for _, t := range tasks {
				if t.ID == types.TaskID(args[0]) {
					fmt.Fprintf(os.Stdout, "Task %q completed: %v.\n", t.Title, t.IsCompleted)
				}
			}
			return nil
		})
	},
}

var taskRemoveCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			if _, err := shell.RemoveTask(ctx, types.TaskID(args[0])); err != nil {
				return fmt.Errorf("remove task: %w", err)
			}
			fmt.Fprintf(os.Stdout, "Task %s removed.\n", args[0])
			return nil
		})
	},
}

var timetableCmd = &cobra.Command{
	Use:   "timetable",
	Short: "Show or replace the weekly timetable",
}

var timetableShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the timetable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			tt, err := shell.Timetable(ctx)
			if err != nil {
				return err
			}
			if tt.Content == "" {
				fmt.Println("No timetable.")
				return nil
			}
			fmt.Println(tt.Content)
			return nil
		})
	},
}

var timetableSetCmd = &cobra.Command{
	Use:   "set [content]",
	Short: "Replace the timetable",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		var content string
		switch {
		case file == "-":
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			content = string(data)
		case file != "":
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read timetable: %w", err)
			}
			content = string(data)
		case len(args) == 1:
			content = args[0]
		default:
			return fmt.Errorf("pass the content or --file")
		}
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			if err := shell.SetTimetable(ctx, content); err != nil {
				return fmt.Errorf("set timetable: %w", err)
			}
			fmt.Println("Timetable saved.")
			return nil
		})
	},
}
