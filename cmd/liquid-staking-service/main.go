package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/algem/liquid-staking-service/cmd/liquid-staking-service/cli"
	"github.com/algem/liquid-staking-service/cmd/liquid-staking-service/scripts"
	"github.com/algem/liquid-staking-service/internal/api"
	"github.com/algem/liquid-staking-service/internal/clients"
	"github.com/algem/liquid-staking-service/internal/config"
	"github.com/algem/liquid-staking-service/internal/db/model"
	"github.com/algem/liquid-staking-service/internal/observability/healthcheck"
	"github.com/algem/liquid-staking-service/internal/observability/metrics"
	"github.com/algem/liquid-staking-service/internal/poller"
	"github.com/algem/liquid-staking-service/internal/queue"
	queueclient "github.com/algem/liquid-staking-service/internal/queue/client"
	"github.com/algem/liquid-staking-service/internal/services"
	"github.com/algem/liquid-staking-service/internal/types"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("failed to load .env file")
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// setup cli commands and flags
	if err := cli.Setup(); err != nil {
		log.Fatal().Err(err).Msg("error while setting up cli")
	}

	task := cli.GetTask()
	if task.Name == cli.TaskConvertAddr {
		if err := scripts.ConvertAddr(os.Stdout, task.Args, task.Prefix); err != nil {
			log.Fatal().Err(err).Msg("error while converting addresses")
		}
		return
	}

	// load config
	cfgPath := cli.GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	// Genesis params are only needed the first time, before any ledger is saved.
	var params *types.GenesisParams
	paramsPath := cli.GetGenesisParamsPath()
	if _, statErr := os.Stat(paramsPath); statErr == nil {
		params, err = types.NewGenesisParams(paramsPath)
		if err != nil {
			log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading genesis params file: %s", paramsPath))
		}
	} else {
		log.Info().Str("path", paramsPath).Msg("no genesis params file, expecting a saved ledger")
	}

	metrics.Init(cfg.Metrics.Address())

	err = model.Setup(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up ledger db model")
	}

	c := clients.New(cfg)

	publisher, err := queueclient.NewQueueClient(&cfg.Queue, cfg.Queue.LedgerEventQueue)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating ledger event publisher")
	}

	svc, err := services.New(ctx, cfg, params, c.StakingModule, publisher)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up ledger services layer")
	}
	queues := queue.New(cfg.Queue, svc, publisher)

	if task.Name != "" {
		if err := runTask(ctx, task, svc, queues); err != nil {
			log.Fatal().Err(err).Str("task", task.Name).Msg("task failed")
		}
		return
	}

	// Check if the replay flag is set
	if cli.GetReplayFlag() {
		log.Info().Msg("Replay flag is set. Starting replay of unprocessable messages.")
		result, err := scripts.ReplayUnprocessableMessages(ctx, queues, svc.DbClient)
		if err != nil {
			log.Fatal().Err(err).Int("replayed", result.Replayed).Msg("error while replaying unprocessable messages")
		}
		fmt.Printf("replayed %d messages, skipped %d\n", result.Replayed, result.Skipped)
		return
	}

	queues.StartReceivingMessages()
	defer queues.StopReceivingMessages()

	err = healthcheck.StartHealthCheckCron(ctx, cfg.Server.HealthCheckInterval,
		healthcheck.Checker{Name: "db", Check: svc.DoHealthCheck},
		healthcheck.Checker{Name: "queues", Check: func(context.Context) error {
			return queues.IsConnectionHealthy()
		}},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("error while starting health check cron")
	}

	if cfg.Ledger.EraPollCron != "" {
		p := poller.New(svc, c.StakingModule, queues.EraSyncQueueClient)
		if err := poller.StartEraPollerCron(ctx, p, cfg.Ledger.EraPollCron); err != nil {
			log.Fatal().Err(err).Msg("error while starting era poller")
		}
	}

	apiServer, err := api.New(ctx, cfg, svc)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up ledger api service")
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := apiServer.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error while stopping ledger api service")
		}
	}()
	if err = apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("error while starting ledger api service")
	}
}

func runTask(ctx context.Context, task cli.Task, svc *services.Services, queues *queue.Queues) error {
	switch task.Name {
	case cli.TaskStakers:
		return scripts.ExportStakers(ctx, svc, task.Out)
	case cli.TaskShooter:
		return scripts.Shoot(ctx, svc, queues.EraShotQueueClient, task.Args[0], task.Utility, task.Dnt)
	case cli.TaskGiveMoney:
		return scripts.GiveMoney(ctx, svc, task.Args[0], task.Args[1])
	default:
		return fmt.Errorf("unknown task %q", task.Name)
	}
}
