package cli

import (
	"os"
	"os/signal"
	"slices"
	"syscall"

	"todoSync/internal/controller"

	"github.com/spf13/cobra"
)

func newWatchCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "print the list every time it changes, until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ctrl, err := rt.synced(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var (
				last    []string
				printed bool
			)
			unsubscribe := ctrl.Subscribe(func(s controller.Snapshot) {
				if s.Busy {
					return
				}
				current := fingerprint(s)
				if printed && slices.Equal(last, current) {
					return
				}
				if printed {
					printf(out, "--\n")
				}
				last, printed = current, true
				_ = printTasks(out, s.Tasks, filterAll)
			})
			defer unsubscribe()

			w, err := rt.session.StartRefresh(ctx)
			if err != nil {
				return err
			}

			select {
			case <-ctx.Done():
			case <-w.Done():
			}
			return nil
		},
	}
}

// fingerprint - строки, по которым видно, изменился ли список
func fingerprint(s controller.Snapshot) []string {
	lines := make([]string, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		done := "0"
		if t.IsDone() {
			done = "1"
		}
		lines = append(lines, t.ID.String()+"\x00"+t.Title+"\x00"+t.Notes+"\x00"+done)
	}
	return lines
}
