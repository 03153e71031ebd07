// Package service wires the wallet agent together and runs the event loop.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/voxwallet-hq/voxwallet/pkg/chainclient"
	"github.com/voxwallet-hq/voxwallet/pkg/config"
	"github.com/voxwallet-hq/voxwallet/pkg/conversation"
	"github.com/voxwallet-hq/voxwallet/pkg/executor"
	"github.com/voxwallet-hq/voxwallet/pkg/health"
	"github.com/voxwallet-hq/voxwallet/pkg/intent"
	"github.com/voxwallet-hq/voxwallet/pkg/llm"
	"github.com/voxwallet-hq/voxwallet/pkg/locale"
	"github.com/voxwallet-hq/voxwallet/pkg/logger"
	"github.com/voxwallet-hq/voxwallet/pkg/models"
	"github.com/voxwallet-hq/voxwallet/pkg/rollup"
	"github.com/voxwallet-hq/voxwallet/pkg/session"
	"github.com/voxwallet-hq/voxwallet/pkg/speech"
	"github.com/voxwallet-hq/voxwallet/pkg/store"
	"github.com/voxwallet-hq/voxwallet/pkg/wallet"
)

// EventSource produces inbound user events. The returned channel closes when
// the source shuts down.
type EventSource interface {
	Events(ctx context.Context) (<-chan models.Event, error)
}

// Service runs the wallet agent: it consumes transport events and dispatches
// them to a worker pool over the conversation handler.
type Service struct {
	config   *config.Config
	store    *store.Store
	sessions *session.RedisStore
	chain    *chainclient.Client
	exec     *executor.Executor
	handler  *conversation.Handler
	source   EventSource
	workers  int
	jobs     []chan models.Event
	wg       sync.WaitGroup
	logger   logger.Logger
}

// NewService connects every backend and assembles the pipeline.
func NewService(ctx context.Context, cfg *config.Config, transport conversation.Transport, source EventSource) (*Service, error) {
	log := logger.NewStdLogger(cfg.LoggerConfig.Coloring, cfg.LoggerConfig.Level)

	db, err := store.New(ctx, cfg.MySQLDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %v", err)
	}

	sessions, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize session store: %v", err)
	}

	chain, err := chainclient.New(cfg.EthRPCURL, cfg.GasPriceGwei, cfg.MaxGasPrice, cfg.ChainTimeout, log)
	if err != nil {
		db.Close()
		sessions.Close()
		return nil, fmt.Errorf("failed to connect to chain: %v", err)
	}

	completer, err := llm.NewClient(llm.Config{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		Stream:  true,
		Timeout: cfg.LLMTimeout,
	})
	if err != nil {
		db.Close()
		sessions.Close()
		chain.Close()
		return nil, fmt.Errorf("failed to create completion client: %v", err)
	}

	transcriber, err := speech.NewClient(cfg.OpenAIAPIKey, "", "", cfg.LLMTimeout)
	if err != nil {
		db.Close()
		sessions.Close()
		chain.Close()
		return nil, fmt.Errorf("failed to create transcription client: %v", err)
	}

	wallets, err := wallet.NewManager(cfg.EncryptionPassphrase)
	if err != nil {
		db.Close()
		sessions.Close()
		chain.Close()
		return nil, fmt.Errorf("failed to create wallet manager: %v", err)
	}

	catalog, err := locale.Load(cfg.LocalePath)
	if err != nil {
		db.Close()
		sessions.Close()
		chain.Close()
		return nil, fmt.Errorf("failed to load strings catalog: %v", err)
	}

	rollupClient := rollup.New(cfg.RollupURL, cfg.RollupTimeout, log)
	extractor := intent.NewExtractor(completer, db, log)
	exec := executor.New(chain, rollupClient, wallets,
		cfg.CircuitBreaker.Enabled, cfg.CircuitBreaker.Threshold,
		cfg.CircuitBreaker.WindowDuration, cfg.CircuitBreaker.ResetTimeout, log)
	balances := conversation.NewLayerBalances(chain, rollupClient, wallets)
	handler := conversation.NewHandler(transport, db, sessions, extractor, transcriber, exec, wallets, balances, catalog, log)

	return &Service{
		config:   cfg,
		store:    db,
		sessions: sessions,
		chain:    chain,
		exec:     exec,
		handler:  handler,
		source:   source,
		workers:  cfg.WorkerCount,
		logger:   log,
	}, nil
}

// Start runs the event loop until the context is cancelled or the event
// source closes.
func (s *Service) Start(ctx context.Context) {
	healthServer := health.NewServer(s.config.MetricsPort, s.probes(), s.exec.Breakers(), s.logger)
	go healthServer.Start()

	// Events are sharded by user id so one user's turns never interleave.
	s.logger.Info("starting %d worker goroutines", s.workers)
	s.jobs = make([]chan models.Event, s.workers)
	for i := 0; i < s.workers; i++ {
		s.jobs[i] = make(chan models.Event, 100)
		go s.worker(ctx, i)
	}

	events, err := s.source.Events(ctx)
	if err != nil {
		s.logger.Error("failed to start event source: %v", err)
		s.stopWorkers()
		s.shutdown()
		return
	}

	s.logger.Notice("wallet agent started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("context cancelled, shutting down service")
			s.stopWorkers()
			s.shutdown()
			return
		case ev, ok := <-events:
			if !ok {
				s.logger.Info("event source closed, shutting down service")
				s.stopWorkers()
				s.shutdown()
				return
			}
			shard := int(uint64(ev.UserID) % uint64(s.workers))
			s.wg.Add(1)
			s.jobs[shard] <- ev
		}
	}
}

// worker consumes events from its shard until the channel closes. Each event
// is handled to completion; the handler never returns an error.
func (s *Service) worker(ctx context.Context, id int) {
	s.logger.Debug("worker %d started", id)
	for ev := range s.jobs[id] {
		s.handler.HandleEvent(ctx, ev)
		s.wg.Done()
	}
	s.logger.Debug("worker %d stopped", id)
}

func (s *Service) stopWorkers() {
	for _, jobs := range s.jobs {
		close(jobs)
	}
	s.wg.Wait()
}

func (s *Service) probes() map[string]health.Probe {
	return map[string]health.Probe{
		"sessions": s.sessions.Ping,
		"chain": func(ctx context.Context) error {
			_, err := s.chain.Balance(ctx, "0x0000000000000000000000000000000000000000")
			return err
		},
	}
}

func (s *Service) shutdown() {
	if err := s.sessions.Close(); err != nil {
		s.logger.Error("failed to close session store: %v", err)
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("failed to close store: %v", err)
	}
	s.chain.Close()
}
