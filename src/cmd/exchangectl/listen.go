package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"mutualexchange/src/helper/env"
	"mutualexchange/src/infra/redis"

	"github.com/spf13/cobra"
)

var listenCmd = &cobra.Command{
	Use:   "listen <person-id>...",
	Short: "Tail the live notification channel of one or more people",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runListen,
}

func runListen(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := redis.NewRedisClient(env.MustGetString("REDIS_HOSTS"), 2).
		WithPrefix(env.GetString("REDIS_LIVE_CHANNEL_PREFIX", "notifications:"))
	defer client.Close()

	sub := client.Subscribe(ctx, args...)
	defer sub.Close()

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", msg.Channel, msg.Payload)
		}
	}
}
