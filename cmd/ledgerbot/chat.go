package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/evanko/ledgerbot/internal/category"
	"github.com/evanko/ledgerbot/internal/console"
	"github.com/evanko/ledgerbot/internal/flow"
	"github.com/evanko/ledgerbot/internal/report"
	"github.com/evanko/ledgerbot/internal/session"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive ledger chat",
		Long: `Open the conversational ledger in the terminal. Menu choices print
as numbered options; type the number to select one, or use the slash
commands directly (/income, /expense, /stats, /help, /quit).`,
		RunE: runChat,
	}

	cmd.Flags().String("artifact-dir", "", "directory for exported files (default: system temp dir)")
	_ = viper.BindPFlag("chat.artifact_dir", cmd.Flags().Lookup("artifact-dir"))

	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	categories := category.NewService(store)
	if err := categories.EnsureDefaults(ctx); err != nil {
		return err
	}

	renderer, err := buildRenderer(ctx)
	if err != nil {
		return err
	}

	router := flow.NewRouter(
		store,
		session.NewStore(),
		categories,
		report.NewEngine(store),
		renderer,
		flow.NewAllowListGate(viper.GetString("bot.allowed_user_id")),
	)

	opts := []console.Option{}
	if dir := viper.GetString("chat.artifact_dir"); dir != "" {
		opts = append(opts, console.WithArtifactDir(dir))
	}
	chat := console.New(router, localIdentity(), opts...)

	slog.Info("chat started", "database", viper.GetString("database.path"))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return chat.Run(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
