package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/algem/liquid-staking-service/internal/config"
	"github.com/algem/liquid-staking-service/internal/db"
	"github.com/algem/liquid-staking-service/internal/db/model"
	"github.com/algem/liquid-staking-service/internal/ledger"
	"github.com/algem/liquid-staking-service/internal/ledger/liquidstaking"
	"github.com/algem/liquid-staking-service/internal/observability/metrics"
	queueclient "github.com/algem/liquid-staking-service/internal/queue/client"
	"github.com/algem/liquid-staking-service/internal/stakingmodule"
	"github.com/algem/liquid-staking-service/internal/types"
)

const compensationTimeout = 30 * time.Second

// Service layer contains the business logic and is used to interact with
// the database and other external clients (if any).
//
// Services owns the only ledger instance. Every mutation runs under mu,
// is persisted together with its events and only then published.
type Services struct {
	DbClient  db.DBClient
	cfg       *config.Config
	params    *types.GenesisParams
	module    stakingmodule.Module
	publisher queueclient.QueueClient
	// journal wraps a remote module. Its calls are undone when the ledger
	// change that made them is rolled back.
	journal *stakingmodule.Journal

	mu       sync.Mutex
	ledger   *Ledger
	version  uint64
	eventSeq uint64
}

// New connects to the database and loads the ledger. publisher may be nil,
// in which case events are only persisted.
func New(
	ctx context.Context, cfg *config.Config, params *types.GenesisParams,
	module stakingmodule.Module, publisher queueclient.QueueClient,
) (*Services, error) {
	dbClient, err := db.New(ctx, cfg.Db)
	if err != nil {
		log.Ctx(ctx).Fatal().Err(err).Msg("error while creating db client")
		return nil, err
	}
	return NewWithDbClient(ctx, cfg, params, dbClient, module, publisher)
}

func NewWithDbClient(
	ctx context.Context, cfg *config.Config, params *types.GenesisParams,
	dbClient db.DBClient, module stakingmodule.Module, publisher queueclient.QueueClient,
) (*Services, error) {
	s := &Services{
		DbClient:  dbClient,
		cfg:       cfg,
		params:    params,
		module:    module,
		publisher: publisher,
	}
	if _, simulated := module.(*stakingmodule.Simulated); !simulated {
		s.journal = stakingmodule.NewJournal(module)
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// load restores the saved ledger or deploys the genesis one and saves it.
func (s *Services) load(ctx context.Context) error {
	doc, err := s.DbClient.LoadLedgerState(ctx)
	if err == nil {
		var state LedgerState
		if err := json.Unmarshal([]byte(doc.State), &state); err != nil {
			return fmt.Errorf("decode ledger state: %w", err)
		}
		l, err := RestoreLedger(state, s.ledgerModule())
		if err != nil {
			return err
		}
		s.ledger = l
		s.version = doc.Version
		s.eventSeq = doc.EventSeq
		log.Ctx(ctx).Info().
			Uint64("version", doc.Version).
			Uint64("last_synced_era", doc.LastSyncedEra).
			Msg("restored ledger state")
		s.recordGauges()
		return nil
	}
	if !db.IsNotFoundError(err) {
		return fmt.Errorf("load ledger state: %w", err)
	}

	if s.params == nil {
		return fmt.Errorf("no saved ledger state and no genesis params")
	}
	l, err := Bootstrap(ctx, s.params, s.ledgerModule(), s.cfg.Ledger.KeeperAddress())
	if err != nil {
		return fmt.Errorf("bootstrap ledger: %w", err)
	}
	s.ledger = l
	// Events of the deployment itself are not part of the history.
	l.Events.Drain()
	if err := s.persist(ctx, nil, liquidstaking.History{}); err != nil {
		return fmt.Errorf("save genesis ledger: %w", err)
	}
	log.Ctx(ctx).Info().
		Uint64("last_synced_era", l.Engine.LastSyncedEra()).
		Msg("deployed genesis ledger")
	s.recordGauges()
	return nil
}

// DoHealthCheck checks the health of the services by ping the database.
func (s *Services) DoHealthCheck(ctx context.Context) error {
	return s.DbClient.Ping(ctx)
}

func (s *Services) SaveUnprocessableMessages(ctx context.Context, messageBody, receipt string) error {
	err := s.DbClient.SaveUnprocessableMessage(ctx, messageBody, receipt)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while saving unprocessable message")
		return types.NewErrorWithMsg(http.StatusInternalServerError, types.InternalServiceError, "error while saving unprocessable message")
	}
	return nil
}

// ledgerModule is the module the ledger components call.
func (s *Services) ledgerModule() stakingmodule.Module {
	if s.journal != nil {
		return s.journal
	}
	return s.module
}

// mutate runs fn against the ledger and persists the result. Any failure,
// from fn or from the database, rolls the in-memory ledger back to the
// state before fn and undoes the bond and unbond calls fn made on a remote
// module.
func (s *Services) mutate(ctx context.Context, fn func(l *Ledger) error) *types.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.ledger.Export(s.module)
	if s.journal != nil {
		s.journal.Reset()
		defer s.journal.Reset()
	}
	rollback := func() {
		l, err := RestoreLedger(before, s.ledgerModule())
		if err != nil {
			log.Ctx(ctx).Fatal().Err(err).Msg("failed to roll back ledger state")
		}
		s.ledger = l
		s.compensate(ctx)
	}

	if err := fn(s.ledger); err != nil {
		rollback()
		return toApiError(err)
	}
	events := s.ledger.Events.Drain()
	history := s.ledger.Engine.DrainHistory()
	if err := s.persist(ctx, events, history); err != nil {
		rollback()
		log.Ctx(ctx).Error().Err(err).Msg("failed to persist ledger state")
		return toApiError(err)
	}
	s.recordGauges()
	return nil
}

// compensate undoes the module calls of a rolled back change. Calls that
// cannot be undone leave the module out of step with the ledger's bonded
// pool and are logged for manual reconciliation.
func (s *Services) compensate(ctx context.Context) {
	if s.journal == nil || len(s.journal.Entries()) == 0 {
		return
	}
	// the request may already be cancelled; the undo must still go out
	undoCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()
	left, err := s.journal.Compensate(undoCtx)
	if err != nil {
		metrics.RecordModuleCompensationFailure()
		log.Ctx(ctx).Error().Err(err).
			Interface("outstanding", left).
			Msg("staking module is out of step with the ledger and needs reconciliation")
		return
	}
	log.Ctx(ctx).Warn().Msg("undid staking module calls of a rolled back ledger change")
}

// persist saves the current ledger as the next version together with the
// events and era records of the change. Must be called with mu held, or
// before the services are shared.
func (s *Services) persist(ctx context.Context, events []ledger.Event, history liquidstaking.History) error {
	if sim, ok := s.module.(*stakingmodule.Simulated); ok {
		sim.PruneRewards(s.ledger.Engine.LastSyncedEra())
	}
	state, err := json.Marshal(s.ledger.Export(s.module))
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	records := newLedgerRecords(events, history, s.eventSeq, now)
	doc := &model.LedgerStateDocument{
		ID:            model.LedgerStateID,
		Version:       s.version + 1,
		LastSyncedEra: s.ledger.Engine.LastSyncedEra(),
		EventSeq:      s.eventSeq + uint64(len(records.Events)),
		State:         string(state),
		UpdatedAt:     now,
	}
	if err := s.DbClient.SaveLedgerState(ctx, doc, records); err != nil {
		return err
	}
	s.version = doc.Version
	s.eventSeq = doc.EventSeq
	for _, d := range records.Events {
		metrics.RecordLedgerEvent(d.Type)
	}
	s.publish(ctx, records.Events)
	return nil
}

// newLedgerRecords numbers events after lastSeq and converts the records of
// one change into their documents.
func newLedgerRecords(
	events []ledger.Event, history liquidstaking.History, lastSeq uint64, now int64,
) *model.LedgerRecords {
	records := &model.LedgerRecords{
		Events:   make([]model.LedgerEventDocument, 0, len(events)),
		Eras:     make([]model.EraDocument, 0, len(history.Eras)),
		EraShots: make([]model.EraShotDocument, 0, len(history.EraShots)),
	}
	for i, e := range events {
		d := model.LedgerEventDocument{
			ID:        uuid.NewString(),
			Seq:       lastSeq + uint64(i) + 1,
			Type:      string(e.Type),
			Era:       e.Era,
			User:      e.User.Hex(),
			Amount:    e.Amount.String(),
			Immediate: e.Immediate,
			Utility:   e.Utility,
			RequestID: e.RequestID,
			CreatedAt: now,
		}
		if e.To != (common.Address{}) {
			d.To = e.To.Hex()
		}
		records.Events = append(records.Events, d)
	}
	for _, info := range history.Eras {
		records.Eras = append(records.Eras, model.EraDocument{
			Era:               info.Era,
			Reward:            info.Reward.String(),
			Fee:               info.Fee.String(),
			Distributed:       info.Distributed.String(),
			Dust:              info.Dust.String(),
			TotalAllocated:    info.TotalAllocated.String(),
			AccRewardPerToken: info.AccRewardPerToken.String(),
			CreatedAt:         now,
		})
	}
	for _, shot := range history.EraShots {
		records.EraShots = append(records.EraShots, model.EraShotDocument{
			User:      shot.User.Hex(),
			Utility:   shot.Utility,
			Era:       shot.Era,
			Balance:   shot.Balance.String(),
			Rewards:   shot.Rewards.String(),
			CreatedAt: now,
		})
	}
	return records
}

// publish forwards persisted events to the outgoing queue. The database is
// the source of truth, so a failed publish is only logged.
func (s *Services) publish(ctx context.Context, docs []model.LedgerEventDocument) {
	if s.publisher == nil {
		return
	}
	for _, d := range docs {
		body, err := json.Marshal(queueclient.LedgerEvent{
			EventType: queueclient.LedgerEventType,
			ID:        d.ID,
			Seq:       d.Seq,
			Type:      d.Type,
			Era:       d.Era,
			User:      d.User,
			To:        d.To,
			Amount:    d.Amount,
			Immediate: d.Immediate,
			Utility:   d.Utility,
			RequestID: d.RequestID,
			CreatedAt: d.CreatedAt,
		})
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Uint64("seq", d.Seq).Msg("failed to encode ledger event")
			continue
		}
		if err := s.publisher.SendMessage(ctx, string(body)); err != nil {
			log.Ctx(ctx).Error().Err(err).
				Uint64("seq", d.Seq).
				Str("queueName", s.publisher.GetQueueName()).
				Msg("failed to publish ledger event")
		}
	}
}

func (s *Services) recordGauges() {
	pools := s.ledger.Engine.Pools()
	metrics.RecordLedgerGauges(metrics.LedgerGauges{
		Pools: map[string]*big.Int{
			"reward":    pools.Reward.BigInt(),
			"unstaking": pools.Unstaking.BigInt(),
			"unbonded":  pools.Unbonded.BigInt(),
			"revenue":   pools.Revenue.BigInt(),
			"bonded":    pools.Bonded.BigInt(),
			"unbonding": pools.Unbonding.BigInt(),
		},
		LastSyncedEra: s.ledger.Engine.LastSyncedEra(),
		TotalSupply:   s.ledger.Token.TotalSupply().BigInt(),
		Stakers:       len(s.ledger.Engine.GetStakers()),
	})
}

// view runs fn against the ledger under the lock.
func (s *Services) view(fn func(l *Ledger)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.ledger)
}

func (s *Services) Keeper() common.Address {
	return s.cfg.Ledger.KeeperAddress()
}
