package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/tracsync/internal/syncerror"
)

const (
	DefaultMaxConnectAttempts = 5
	DefaultConnectRetryDelay  = 2 * time.Second
)

// ConnectWithRetries pings the data source until it answers, waiting a fixed delay
// between attempts. Once maxAttempts pings have failed a ConnectionError is returned;
// callers must treat it as fatal for the run.
func ConnectWithRetries(ctx context.Context, ds IDataSource, maxAttempts int, delay time.Duration) error {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxConnectAttempts
	}
	if delay < 0 {
		delay = DefaultConnectRetryDelay
	}

	attempt := 0
	operation := func() error {
		attempt++
		err := ds.Ping(ctx)
		if err == nil {
			return nil
		}
		logrus.WithFields(logrus.Fields{
			"attempt":      attempt,
			"max_attempts": maxAttempts,
		}).Warnf("failed to connect to data source: %v", err)
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		if attempt < maxAttempts {
			logrus.Infof("retrying connection in %s", delay)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(maxAttempts-1)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		logrus.Error("exceeded maximum connection attempts to data source")
		return syncerror.NewConnectionError(
			fmt.Sprintf("could not connect to data source after %d attempts", attempt),
			err,
			map[string]int{"attempts": attempt},
		)
	}

	logrus.Info("data source connected ✅")
	return nil
}
