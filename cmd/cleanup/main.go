package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/sechenov-plus/quiz-lambda/internal/config"
	"github.com/sechenov-plus/quiz-lambda/internal/container"
	"github.com/sechenov-plus/quiz-lambda/internal/retention"
)

// Scheduled by an EventBridge rule, once a day.
func main() {
	rc, publisher, err := container.NewRetention(context.Background())
	if err != nil {
		config.Logger.WithError(err).Fatal("Failed to build retention container")
	}
	defer publisher.Close()

	lambda.Start(func(ctx context.Context, ev events.CloudWatchEvent) (*retention.Report, error) {
		config.WithContext(ctx).WithField("event_id", ev.ID).Info("Scheduled cleanup triggered")
		return rc.Service.Run(ctx, retention.TriggerSchedule)
	})
}
