package events_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/asset-management/internal/core/events"
)

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	newEvent := func(eventType string) events.BaseEvent {
		return events.BaseEvent{
			ID:        "evt-1",
			Type:      eventType,
			Timestamp: time.Now(),
		}
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(logger)
	})

	Describe("Publish", func() {
		It("should keep running handlers after the publishing context is canceled", func() {
			// The HTTP server cancels the request context as soon as the
			// handler returns. Notification and audit writes ride on these
			// handlers, so a canceled caller must not take them down.
			seen := make(chan error, 1)
			bus.Subscribe("asset.disposal.approved", func(ctx context.Context, e events.Event) error {
				seen <- ctx.Err()
				return nil
			})

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			bus.Publish(ctx, newEvent("asset.disposal.approved"))

			var handlerCtxErr error
			Eventually(seen).Should(Receive(&handlerCtxErr))
			Expect(handlerCtxErr).ToNot(HaveOccurred())
		})

		It("should fan the event out to every subscriber", func() {
			calls := make(chan string, 2)
			bus.Subscribe("asset.created", func(_ context.Context, e events.Event) error {
				calls <- "first"
				return nil
			})
			bus.Subscribe("asset.created", func(_ context.Context, e events.Event) error {
				calls <- "second"
				return nil
			})

			bus.Publish(context.Background(), newEvent("asset.created"))

			received := []string{<-calls, <-calls}
			Expect(received).To(ConsistOf("first", "second"))
		})
	})

	Describe("PublishSync", func() {
		It("should surface a handler failure to the caller", func() {
			bus.Subscribe("asset.updated", func(_ context.Context, e events.Event) error {
				return errors.New("sink unavailable")
			})

			err := bus.PublishSync(context.Background(), newEvent("asset.updated"))
			Expect(err).To(MatchError(ContainSubstring("sink unavailable")))
		})
	})
})
