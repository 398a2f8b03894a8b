package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"todoSync/internal/app"
	"todoSync/internal/client"
	"todoSync/internal/config"
	"todoSync/internal/controller"
	"todoSync/internal/credentials"
	"todoSync/internal/logger"
	"todoSync/internal/notify"

	"github.com/spf13/cobra"
)

// runtime - общее состояние команд одного запуска
type runtime struct {
	configPath string
	verbose    bool

	cfg     *config.Config
	session *app.App
	options []client.Option
}

// NewRootCommand собирает дерево команд; options передаются клиенту API
func NewRootCommand(options ...client.Option) *cobra.Command {
	rt := &runtime{options: options}

	rootCmd := &cobra.Command{
		Use:   "todo",
		Short: "todo keeps a task list in sync with a remote server",
		Long: `todo works with a task list stored on a remote server.

Every command fetches the current list first and then applies its change.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.session != nil {
				rt.session.Shutdown()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&rt.configPath, "config", "c", "", "path to config.yml")
	rootCmd.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "write debug log to stderr")

	rootCmd.AddCommand(
		newLoginCmd(rt),
		newLogoutCmd(rt),
		newListCmd(rt),
		newAddCmd(rt),
		newEditCmd(rt),
		newDoneCmd(rt, "done", "отметить задачу выполненной", true),
		newDoneCmd(rt, "undone", "снять отметку выполнения", false),
		newToggleCmd(rt),
		newRemoveCmd(rt),
		newWatchCmd(rt),
	)
	return rootCmd
}

// Execute запускает CLI и печатает ошибки, о которых пользователь ещё не узнал
func Execute(version string) error {
	rootCmd := NewRootCommand()
	rootCmd.Version = version

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if _, shown := client.AsFailure(err); !shown {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return err
	}
	return nil
}

func (rt *runtime) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return err
	}
	rt.cfg = cfg

	if rt.verbose {
		if err := logger.Init(true); err != nil {
			return fmt.Errorf("инициализация логгера: %w", err)
		}
	}

	sink := controller.Notifier(notify.NewWriter(cmd.ErrOrStderr()))
	if rt.verbose {
		sink = notify.Multi{sink, notify.Log{}}
	}

	rt.session = app.New(cfg, credentials.NewFileStore(cfg.Credentials.Path), sink, rt.options...)
	return rt.session.Init(cmd.Context())
}

// synced возвращает контроллер с только что полученным списком
func (rt *runtime) synced(ctx context.Context) (*controller.Controller, error) {
	ctrl, err := rt.session.Controller()
	if errors.Is(err, app.ErrNotLoggedIn) {
		return nil, errors.New("not logged in: run todo login <username> first")
	}
	if err != nil {
		return nil, err
	}
	if err := ctrl.Sync(ctx); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
