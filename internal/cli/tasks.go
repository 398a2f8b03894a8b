package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"todoSync/internal/controller"
	"todoSync/internal/models/task"

	"github.com/spf13/cobra"
)

// filter - какие задачи показывать в list
type filter int

const (
	filterAll filter = iota
	filterOpen
	filterDone
)

func (f filter) keep(t task.Task) bool {
	switch f {
	case filterOpen:
		return !t.IsDone()
	case filterDone:
		return t.IsDone()
	default:
		return true
	}
}

func newListCmd(rt *runtime) *cobra.Command {
	var all, open, done bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "show tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := rt.synced(cmd.Context())
			if err != nil {
				return err
			}

			f := filterAll
			switch {
			case all:
			case open:
				f = filterOpen
			case done:
				f = filterDone
			}
			return printTasks(cmd.OutOrStdout(), ctrl.Tasks(), f)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "every task (default)")
	cmd.Flags().BoolVar(&open, "open", false, "only tasks that are not done")
	cmd.Flags().BoolVar(&done, "done", false, "only completed tasks")
	cmd.MarkFlagsMutuallyExclusive("all", "open", "done")
	return cmd
}

func newAddCmd(rt *runtime) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := rt.synced(cmd.Context())
			if err != nil {
				return err
			}

			created, err := ctrl.Create(cmd.Context(), task.NewTaskRequest{
				Title: strings.Join(args, " "),
				Notes: notes,
			})
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&notes, "notes", "n", "", "task notes")
	return cmd
}

func newEditCmd(rt *runtime) *cobra.Command {
	var title, notes string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "change title or notes of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var options []task.TaskOption
			if cmd.Flags().Changed("title") {
				options = append(options, task.WithTitle(title))
			}
			if cmd.Flags().Changed("notes") {
				options = append(options, task.WithNotes(notes))
			}
			if len(options) == 0 {
				return errors.New("nothing to change: pass --title or --notes")
			}

			return rt.withTask(cmd, args[0], func(ctx context.Context, ctrl *controller.Controller, t task.Task) error {
				updated, err := ctrl.Update(ctx, t, options...)
				if err != nil {
					return err
				}
				return printTasks(cmd.OutOrStdout(), []task.Task{*updated}, filterAll)
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "new notes")
	return cmd
}

func newDoneCmd(rt *runtime, use, short string, done bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withTask(cmd, args[0], func(ctx context.Context, ctrl *controller.Controller, t task.Task) error {
				updated, err := ctrl.SetDone(ctx, t, done)
				if err != nil {
					return err
				}
				return printTasks(cmd.OutOrStdout(), []task.Task{*updated}, filterAll)
			})
		},
	}
}

func newToggleCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "flip the done state of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withTask(cmd, args[0], func(ctx context.Context, ctrl *controller.Controller, t task.Task) error {
				updated, err := ctrl.ToggleDone(ctx, t)
				if err != nil {
					return err
				}
				return printTasks(cmd.OutOrStdout(), []task.Task{*updated}, filterAll)
			})
		},
	}
}

func newRemoveCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withTask(cmd, args[0], func(ctx context.Context, ctrl *controller.Controller, t task.Task) error {
				return ctrl.Delete(ctx, t)
			})
		},
	}
}

// withTask синхронизирует список и находит задачу по id или его префиксу
func (rt *runtime) withTask(cmd *cobra.Command, ref string, fn func(context.Context, *controller.Controller, task.Task) error) error {
	ctx := cmd.Context()
	ctrl, err := rt.synced(ctx)
	if err != nil {
		return err
	}

	t, err := resolve(ctrl, ref)
	if err != nil {
		return err
	}
	return fn(ctx, ctrl, t)
}

func resolve(ctrl *controller.Controller, ref string) (task.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return task.Task{}, errors.New("empty task id")
	}
	if t, ok := ctrl.Find(task.ID(ref)); ok {
		return t, nil
	}

	var matches []task.Task
	for _, t := range ctrl.Tasks() {
		if strings.HasPrefix(t.ID.String(), ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return task.Task{}, fmt.Errorf("no task with id %q", ref)
	case 1:
		return matches[0], nil
	default:
		return task.Task{}, fmt.Errorf("id prefix %q matches %d tasks", ref, len(matches))
	}
}

func printTasks(w io.Writer, tasks []task.Task, f filter) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, t := range tasks {
		if !f.keep(t) {
			continue
		}
		mark := "[ ]"
		if t.IsDone() {
			mark = "[x]"
		}
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\n", t.ID, mark, t.Title, t.Notes, createdAt(t))
	}
	return tw.Flush()
}

func createdAt(t task.Task) string {
	if t.CreatedAt == nil {
		return ""
	}
	return t.CreatedAt.Local().Format(time.DateTime)
}
