package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"planner-backend/infrastructure/config"
	"planner-backend/infrastructure/di"
	pkgerrors "planner-backend/pkg/errors"
)

// maxConcurrentDigests bounds the fan-out so the summarizer and the
// email provider are not hammered when the user list grows
const maxConcurrentDigests = 4

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	logger := container.Logger
	defer logger.Sync()

	users, err := container.UserRepo.ListActive(ctx)
	if err != nil {
		logger.Fatal("failed to list active users", zap.Error(err))
	}

	logger.Info("digest run starting", zap.Int("users", len(users)))
	start := time.Now()
	refTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDigests)

	for _, user := range users {
		user := user
		g.Go(func() error {
			record, err := container.Aggregator.RunForUser(gctx, user, refTime)
			if err != nil {
				// One user's failure must not abort the whole run; a
				// transient "in progress" error just means another
				// trigger beat us to this user-day.
				if pkgerrors.IsTransient(err) {
					logger.Warn("digest run skipped",
						zap.String("user_id", user.ID()),
						zap.Error(err),
					)
					return nil
				}
				logger.Error("digest run failed",
					zap.String("user_id", user.ID()),
					zap.Error(err),
				)
				return nil
			}
			logger.Info("digest completed",
				zap.String("user_id", user.ID()),
				zap.String("day", record.Day),
				zap.Int("entries", record.EntryCount),
				zap.Bool("summarized", record.Summarized),
			)
			container.Metrics.RecordDigest(gctx, record.Summarized, record.EntryCount, time.Since(start))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("digest run aborted", zap.Error(err))
	}

	logger.Info("digest run finished",
		zap.Int("users", len(users)),
		zap.Duration("duration", time.Since(start)),
	)
}
