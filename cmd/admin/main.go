package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"talentflow/internal/app"
	"talentflow/internal/config"
	"talentflow/internal/persistence"
)

// cli 保存子命令共享的配置与数据门面，在 PersistentPreRunE 中初始化。
type cli struct {
	cfg     *config.Config
	logger  *slog.Logger
	svc     *persistence.Service
	closeDB func() error
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Maintenance commands for the talentflow store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.open(cmd.Context(), cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.close()
		},
	}
	root.SetContext(context.Background())

	root.AddCommand(
		newSeedCmd(c),
		newResetCmd(c),
		newClearCmd(c),
		newCountsCmd(c),
		newExportCmd(c),
		newImportCmd(c),
	)
	return root
}

func (c *cli) open(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	c.logger = app.NewLogger(cfg.Log, cmd.ErrOrStderr())

	svc, closeDB, err := app.OpenService(ctx, cfg, c.logger)
	if err != nil {
		return err
	}
	c.svc, c.closeDB = svc, closeDB
	return nil
}

func (c *cli) close() error {
	if c.closeDB == nil {
		return nil
	}
	err := c.closeDB()
	c.closeDB = nil
	return err
}
