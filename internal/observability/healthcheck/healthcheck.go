package healthcheck

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var logger zerolog.Logger = log.Logger

// exit is swapped in tests so a failed check does not end the test binary.
var exit = os.Exit

func SetLogger(customLogger zerolog.Logger) {
	logger = customLogger
}

// Checker is a dependency whose loss should stop the service.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

func StartHealthCheckCron(ctx context.Context, cronTime int, checkers ...Checker) error {
	c := cron.New()
	logger.Info().Msg("Initiated Health Check Cron")

	if cronTime == 0 {
		cronTime = 60
	}

	cronSpec := fmt.Sprintf("@every %ds", cronTime)

	_, err := c.AddFunc(cronSpec, func() {
		runChecks(ctx, checkers)
	})

	if err != nil {
		return err
	}

	c.Start()

	go func() {
		<-ctx.Done()
		logger.Info().Msg("Stopping Health Check Cron")
		c.Stop()
	}()

	return nil
}

func runChecks(ctx context.Context, checkers []Checker) {
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	for _, checker := range checkers {
		if err := checker.Check(checkCtx); err != nil {
			logger.Error().Err(err).Str("dependency", checker.Name).Msg("dependency is not healthy")
			terminateService()
			return
		}
	}
}

func terminateService() {
	logger.Error().Msg("Terminating service due to health check failure.")
	exit(1)
}
