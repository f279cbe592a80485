package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nyota-loans/ms-go-payments/pkg/watch"
)

var (
	waitBaseURL   string
	waitSubscribe bool
	waitTimeout   time.Duration
)

var waitCmd = &cobra.Command{
	Use:   "wait <external-reference>",
	Short: "Wait for a payment to reach a terminal status",
	Long:  "Watch a payment by external reference until it completes, fails, or the waiting window elapses. Polls the status endpoint by default; --subscribe uses the server-sent events stream instead.",
	Args:  cobra.ExactArgs(1),
	Run:   runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().StringVar(&waitBaseURL, "base-url", "http://localhost:8080", "Payments service base URL")
	waitCmd.Flags().BoolVar(&waitSubscribe, "subscribe", false, "Use the event stream instead of polling")
	waitCmd.Flags().DurationVar(&waitTimeout, "timeout", 60*time.Second, "Waiting window")
}

func runWait(_ *cobra.Command, args []string) {
	externalReference := args[0]
	client := watch.NewClient(waitBaseURL, 10*time.Second)

	var watcher watch.Watcher
	if waitSubscribe {
		subscriber := watch.NewSubscriber(client)
		subscriber.Timeout = waitTimeout
		watcher = subscriber
	} else {
		poller := watch.NewPoller(client)
		watcher = poller
	}

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout+10*time.Second)
	defer cancel()

	outcome, err := watcher.Wait(ctx, externalReference)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logrus.WithField("external_reference", externalReference).Warn("Wait canceled")
			return
		}
		logrus.WithError(err).Fatal("Wait failed")
	}

	logrus.WithFields(logrus.Fields{
		"external_reference": externalReference,
		"outcome":            outcome.String(),
	}).Info("Payment wait resolved")
}
