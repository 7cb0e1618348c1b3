// Package main tails carsearch search events from NATS and logs them.
// Useful for watching relevance-filter behavior in a running deployment.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/usedlot/carsearch/engine/search"
	"github.com/usedlot/carsearch/pkg/natsutil"
)

const searchEventSubject = "carsearch.search.completed"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "carsearch-events",
		Short: "Tail search audit events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(logger)
		},
	}
	root.Flags().String("nats-url", nats.DefaultURL, "NATS URL")

	viper.SetEnvPrefix("CARSEARCH")
	viper.AutomaticEnv()
	if err := viper.BindPFlags(root.Flags()); err != nil {
		logger.Error("bind flags", "err", err)
		os.Exit(1)
	}

	if err := root.Execute(); err != nil {
		logger.Error("exited with error", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	nc, err := nats.Connect(viper.GetString("nats-url"), nats.Name("carsearch-events"))
	if err != nil {
		return err
	}
	defer nc.Drain()

	sub, err := natsutil.Subscribe(nc, searchEventSubject, logger, func(_ context.Context, ev search.Event) {
		logger.Info("search completed",
			"id", ev.ID,
			"query", ev.Query,
			"make", ev.Make,
			"model", ev.Model,
			"year", ev.Year,
			"pass", ev.Pass,
			"raw", ev.RawCount,
			"results", ev.ResultCount,
			"duration", ev.Duration,
		)
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	logger.Info("listening for search events", "subject", searchEventSubject)
	<-ctx.Done()
	return nil
}
