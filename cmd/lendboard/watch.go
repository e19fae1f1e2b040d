package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/oakmontcap/lendboard/internal/events"
	"github.com/oakmontcap/lendboard/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream board events as they happen",
	Long: `Watch streams row saves, refreshes, and snapshot events. By default it
connects to the server's SSE endpoint; with --nats (or a NATS URL on the
active remote) it subscribes to the broker directly.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		topics, _ := cmd.Flags().GetStringSlice("topics")
		natsURL, _ := cmd.Flags().GetString("nats")
		if natsURL == "" {
			natsURL = activeRemoteNATSURL()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if natsURL != "" {
			return watchNATS(ctx, natsURL, topics)
		}
		return watchSSE(ctx, topics)
	},
}

// watchNATS subscribes to the broker directly, bypassing the server.
func watchNATS(ctx context.Context, natsURL string, topics []string) error {
	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats: reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	// NATS subjects take one pattern per subscription.
	pattern := "lendboard.>"
	if len(topics) == 1 {
		pattern = topics[0]
	}
	ch, cancel, err := sub.Subscribe(pattern)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-ch:
			if !ok {
				return nil
			}
			fmt.Println(string(data))
		}
	}
}

// watchSSE streams from the server's SSE endpoint and prints one event per line.
func watchSSE(ctx context.Context, topics []string) error {
	body, err := api.OpenEventStream(ctx, topics)
	if err != nil {
		return err
	}
	defer body.Close()

	var topic string
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, ":"):
			// keepalive comment
		case strings.HasPrefix(line, "event:"):
			topic = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if jsonOutput {
				fmt.Printf(`{"topic":%q,"data":%s}`+"\n", topic, data)
			} else {
				fmt.Printf("%s %s\n", ui.RenderAccent(topic), data)
			}
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("event stream: %w", err)
	}
	return nil
}

func init() {
	watchCmd.Flags().StringSlice("topics", nil, "topic patterns to filter (e.g. lendboard.row.*)")
	watchCmd.Flags().String("nats", "", "subscribe via NATS at this URL instead of SSE")
}
