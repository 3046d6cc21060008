// Package chatrelay composes the relay pipeline: a UI surface feeding change
// notifications into the engine, the engine forwarding messages to the answer
// backend and injecting replies, and an optional SSH transcript console for
// operators.
package chatrelay

import (
	"context"
	"errors"
	"sync"

	"pkt.systems/chatrelay/core"
	"pkt.systems/chatrelay/internal/console"
	"pkt.systems/chatrelay/internal/eventbus"
	"pkt.systems/chatrelay/schema"
	"pkt.systems/pslog"
)

// Relay runs the composed pipeline.
type Relay interface {
	Start(ctx context.Context) error
	Wait() error
	Stop(ctx context.Context) error
}

// ConsoleConfig configures the optional SSH transcript console.
type ConsoleConfig struct {
	Enabled     bool
	Addr        string
	HostKeyPath string
}

// RelayConfig configures the compositor.
type RelayConfig struct {
	Engine  schema.EngineConfig
	Console ConsoleConfig
}

// RelayDeps captures dependencies required to build the relay.
type RelayDeps struct {
	Reader   core.SnapshotReader
	Injector core.Injector
	Client   core.RelayClient
	// Events is the change notification stream from the UI surface.
	Events <-chan schema.ChatEvent
	// Sink optionally observes relay events alongside the console bus.
	Sink   core.EventSink
	Logger pslog.Logger
}

// New constructs a composable relay.
func New(cfg RelayConfig, deps RelayDeps) (Relay, error) {
	if deps.Events == nil {
		return nil, errors.New("event stream dependency is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}

	var bus *eventbus.Bus
	var consoleSrv *console.Server
	if cfg.Console.Enabled {
		bus = eventbus.New(logger)
		consoleSrv = &console.Server{
			Addr:        cfg.Console.Addr,
			HostKeyPath: cfg.Console.HostKeyPath,
			Bus:         bus,
		}
	}

	sink := deps.Sink
	if bus != nil {
		sinks := make([]core.EventSink, 0, 2)
		if sink != nil {
			sinks = append(sinks, sink)
		}
		sinks = append(sinks, bus)
		if len(sinks) == 1 {
			sink = sinks[0]
		} else {
			sink = eventFanout{sinks: sinks}
		}
	}

	engine, err := core.NewEngine(cfg.Engine, core.EngineDeps{
		Reader:   deps.Reader,
		Injector: deps.Injector,
		Client:   deps.Client,
		Sink:     sink,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	return &compositeRelay{
		cfg:        cfg,
		engine:     engine,
		events:     deps.Events,
		consoleSrv: consoleSrv,
	}, nil
}

type compositeRelay struct {
	cfg        RelayConfig
	engine     *core.Engine
	events     <-chan schema.ChatEvent
	consoleSrv *console.Server
	logger     pslog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	errCh   chan error
	started bool
}

func (r *compositeRelay) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		pslog.Ctx(ctx).Warn("relay start rejected", "reason", "already started")
		return errors.New("relay already started")
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.errCh = make(chan error, 2)
	r.started = true
	r.logger = pslog.Ctx(r.ctx)
	r.mu.Unlock()

	log := r.logger
	log.Info(
		"relay start",
		"console", r.cfg.Console.Enabled,
		"console_addr", r.cfg.Console.Addr,
		"bot_name", r.cfg.Engine.BotName,
		"host_package", r.cfg.Engine.HostPackage,
	)
	go func() {
		if err := r.engine.Run(r.ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("engine failed", "err", err)
			r.errCh <- err
		}
	}()
	go r.pump()
	if r.consoleSrv != nil {
		go func() {
			if err := r.consoleSrv.ListenAndServe(r.ctx); err != nil {
				log.Error("console failed", "err", err)
				r.errCh <- err
			}
		}()
	}
	return nil
}

// pump feeds surface change notifications into the engine.
func (r *compositeRelay) pump() {
	for {
		select {
		case <-r.ctx.Done():
			return
		case event, ok := <-r.events:
			if !ok {
				return
			}
			r.engine.Notify(event)
		}
	}
}

func (r *compositeRelay) Wait() error {
	r.mu.Lock()
	ctx := r.ctx
	errCh := r.errCh
	started := r.started
	r.mu.Unlock()
	if !started {
		return errors.New("relay not started")
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if err != nil {
			pslog.Ctx(ctx).Error("relay stopped", "err", err)
			_ = r.Stop(context.Background())
			return err
		}
		return nil
	}
}

func (r *compositeRelay) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel := r.cancel
	started := r.started
	log := r.logger
	r.mu.Unlock()
	if !started {
		return nil
	}
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	log.Info("relay stop requested")
	if cancel != nil {
		cancel()
	}
	if ctx == nil {
		log.Info("relay stop completed")
		return nil
	}
	select {
	case <-ctx.Done():
		log.Warn("relay stop timed out", "err", ctx.Err())
		return ctx.Err()
	case <-r.ctx.Done():
		log.Info("relay stopped")
		return nil
	}
}
