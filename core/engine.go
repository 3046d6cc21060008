package core

import (
	"context"
	"errors"
	"time"

	"pkt.systems/chatrelay/internal/logx"
	"pkt.systems/chatrelay/schema"
	"pkt.systems/pslog"
)

// Phase identifies the engine state for logging and debugging.
type Phase string

const (
	// PhaseIdle means the engine is waiting for a notification.
	PhaseIdle Phase = "idle"
	// PhaseAwaitingReply means a send+poll cycle is in flight.
	PhaseAwaitingReply Phase = "awaiting_reply"
	// PhaseInjecting means a reply is being written into the compose field.
	PhaseInjecting Phase = "injecting"
)

// Engine drives the relay state machine. The run loop goroutine owns all
// conversation state; a single worker goroutine executes the send+poll cycle
// and hands results back as immutable messages, never shared pointers. At
// most one cycle is in flight at a time.
type Engine struct {
	cfg  schema.EngineConfig
	deps EngineDeps
	log  pslog.Logger

	notifyCh chan schema.ChatEvent
	cycleCh  chan cycleResult
	injectCh chan injectResult

	// Owned by the run loop.
	conv      *conversation
	throttle  *NoDoubleClick
	firstSeen time.Time
	cycle     *cycleHandle

	now func() time.Time
}

type cycleHandle struct {
	ctx     context.Context
	cancel  context.CancelFunc
	phase   Phase
	group   string
	sender  string
	content string
}

type cycleResult struct {
	group   string
	sender  string
	content string
	reply   schema.Reply
	expired bool
	err     error
}

type injectResult struct {
	group   string
	content string
	text    string
	sent    bool
	err     error
}

// NewEngine constructs the relay engine.
func NewEngine(cfg schema.EngineConfig, deps EngineDeps) (*Engine, error) {
	normalized, err := schema.NormalizeEngineConfig(cfg)
	if err != nil {
		return nil, err
	}
	cfg = normalized
	if deps.Reader == nil {
		return nil, errors.New("snapshot reader is required")
	}
	if deps.Injector == nil {
		return nil, errors.New("injector is required")
	}
	if deps.Client == nil {
		return nil, errors.New("relay client is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	conv, err := newConversation(cfg.AskedMax)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		deps:     deps,
		log:      logger,
		notifyCh: make(chan schema.ChatEvent, 1),
		cycleCh:  make(chan cycleResult, 1),
		injectCh: make(chan injectResult, 1),
		conv:     conv,
		throttle: NewNoDoubleClick(cfg.ThrottleWindow),
		now:      time.Now,
	}, nil
}

// Notify hands a content-changed notification to the engine. It never
// blocks: when a trigger is already pending the event is dropped, because
// extraction resamples the window fresh and only the latest event of a
// burst matters.
func (e *Engine) Notify(event schema.ChatEvent) {
	select {
	case e.notifyCh <- event:
	default:
	}
}

// Run executes the engine loop until the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("missing context")
	}
	e.log.Info("relay engine started",
		"dead_zone", e.cfg.DeadZone,
		"throttle_window", e.cfg.ThrottleWindow,
		"poll_interval", e.cfg.PollInterval,
		"poll_attempts", e.cfg.PollAttempts,
	)
	for {
		select {
		case <-ctx.Done():
			if e.cycle != nil {
				e.cycle.cancel()
				e.cycle = nil
			}
			e.log.Info("relay engine stopped")
			return ctx.Err()
		case event := <-e.notifyCh:
			e.handleNotify(ctx, event)
		case res := <-e.cycleCh:
			e.handleCycleResult(ctx, res)
		case res := <-e.injectCh:
			e.handleInjectResult(res)
		}
	}
}

func (e *Engine) phase() Phase {
	if e.cycle == nil {
		return PhaseIdle
	}
	return e.cycle.phase
}

func (e *Engine) handleNotify(ctx context.Context, event schema.ChatEvent) {
	if !e.eventMatches(event) {
		return
	}
	now := e.now()
	if e.firstSeen.IsZero() {
		e.firstSeen = now
		e.log.Debug("chat window first seen")
		return
	}
	if now.Sub(e.firstSeen) < e.cfg.DeadZone {
		e.log.Debug("dead zone, trigger skipped")
		return
	}
	if e.settling(now) {
		e.log.Debug("post-injection settle, trigger skipped")
		return
	}

	snap, err := e.deps.Reader.Sample(ctx)
	if err != nil {
		e.log.Warn("window sample failed", "err", err)
		return
	}
	cand, ok := Extract(snap)
	if !ok {
		return
	}
	if cand.Group == "" {
		cand.Group = e.conv.group
	}

	if e.cycle != nil {
		if cand.Group != "" && cand.Group != e.cycle.group {
			// The foreground moved to another conversation; the in-flight
			// reply must not land there.
			e.discardCycle("foreground conversation changed")
			return
		}
		e.log.Debug("cycle in flight, trigger ignored", "phase", e.phase())
		return
	}

	if !e.conv.shouldForward(cand, e.cfg.BotName) {
		e.log.Debug("candidate rejected", "sender", cand.Sender)
		return
	}
	log := logx.WithCycle(e.log, cand.Group, cand.Sender)
	log.Info("message forwarded", "content_len", len(cand.Content))
	e.emit(schema.RelayEvent{
		Type:    schema.EventForwarded,
		Group:   cand.Group,
		Sender:  cand.Sender,
		Content: cand.Content,
	})
	e.startCycle(ctx, cand)
}

func (e *Engine) startCycle(ctx context.Context, cand schema.Candidate) {
	cctx, cancel := context.WithCancel(ctx)
	e.cycle = &cycleHandle{
		ctx:     cctx,
		cancel:  cancel,
		phase:   PhaseAwaitingReply,
		group:   cand.Group,
		sender:  cand.Sender,
		content: cand.Content,
	}
	go e.runCycle(cctx, cand)
}

// runCycle executes one send+poll cycle on the worker goroutine. It only
// produces an immutable result; it never touches engine state.
func (e *Engine) runCycle(ctx context.Context, cand schema.Candidate) {
	res := cycleResult{group: cand.Group, sender: cand.Sender, content: cand.Content}
	log := logx.WithCycle(e.log, cand.Group, cand.Sender)

	// A failed send is logged and abandoned, never retried.
	if err := e.deps.Client.SendText(ctx, cand.Group, cand.Sender, cand.Content); err != nil {
		res.err = err
		e.deliverCycle(ctx, res)
		return
	}

	for attempt := 1; attempt <= e.cfg.PollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(e.cfg.PollInterval):
		}
		reply, err := e.deps.Client.Poll(ctx, cand.Group, cand.Sender)
		if err != nil {
			// Transport or parse failure counts as "no reply yet".
			log.Debug("poll attempt failed", "attempt", attempt, "err", err)
			continue
		}
		if reply.Text != "" {
			res.reply = reply
			e.deliverCycle(ctx, res)
			return
		}
	}
	res.expired = true
	e.deliverCycle(ctx, res)
}

func (e *Engine) deliverCycle(ctx context.Context, res cycleResult) {
	select {
	case e.cycleCh <- res:
	case <-ctx.Done():
	}
}

func (e *Engine) handleCycleResult(ctx context.Context, res cycleResult) {
	cyc := e.cycle
	if cyc == nil || cyc.phase != PhaseAwaitingReply || cyc.group != res.group || cyc.content != res.content {
		e.log.Debug("stale cycle result dropped", "group", res.group)
		return
	}
	log := logx.WithCycle(e.log, res.group, res.sender)

	if res.err != nil {
		e.endCycle()
		log.Warn("relay cycle failed", "err", res.err)
		e.emit(schema.RelayEvent{
			Type: schema.EventFailed, Group: res.group, Sender: res.sender,
			Content: res.content, Detail: res.err.Error(),
		})
		return
	}
	if res.expired {
		e.endCycle()
		log.Info("relay cycle expired", "attempts", e.cfg.PollAttempts)
		e.emit(schema.RelayEvent{
			Type: schema.EventExpired, Group: res.group, Sender: res.sender, Content: res.content,
		})
		return
	}

	// Identity check immediately before acting: the reply must go to the
	// conversation it was asked in.
	if snap, err := e.deps.Reader.Sample(ctx); err == nil &&
		snap.GroupFound && snap.GroupName != "" && snap.GroupName != res.group {
		e.endCycle()
		log.Warn("foreground conversation changed, reply discarded", "foreground", snap.GroupName)
		e.emit(schema.RelayEvent{
			Type: schema.EventDiscarded, Group: res.group, Sender: res.sender,
			Content: res.content, Detail: "foreground conversation changed",
		})
		return
	}

	if !e.throttle.Pass() {
		e.endCycle()
		log.Warn("injection throttled, reply dropped")
		e.emit(schema.RelayEvent{
			Type: schema.EventThrottled, Group: res.group, Sender: res.sender,
			Content: res.content, Text: res.reply.Text,
		})
		return
	}

	e.conv.pendingReply = res.reply.Text
	cyc.phase = PhaseInjecting
	e.emit(schema.RelayEvent{
		Type: schema.EventReply, Group: res.group, Sender: res.sender,
		Content: res.content, Text: res.reply.Text, References: res.reply.References,
	})
	go e.runInject(cyc.ctx, res)
}

// runInject performs the injection on a worker goroutine; the injector
// handles executor marshaling and the settle delay internally.
func (e *Engine) runInject(ctx context.Context, res cycleResult) {
	sent, err := e.deps.Injector.Inject(ctx, res.reply.Text)
	out := injectResult{group: res.group, content: res.content, text: res.reply.Text, sent: sent, err: err}
	select {
	case e.injectCh <- out:
	case <-ctx.Done():
	}
}

func (e *Engine) handleInjectResult(res injectResult) {
	cyc := e.cycle
	if cyc == nil || cyc.phase != PhaseInjecting || cyc.content != res.content {
		e.log.Debug("stale inject result dropped", "group", res.group)
		return
	}
	e.endCycle()
	e.conv.pendingReply = ""
	log := logx.WithCycle(e.log, res.group, "")

	if res.err != nil {
		log.Warn("injection failed", "err", res.err)
		e.emit(schema.RelayEvent{
			Type: schema.EventFailed, Group: res.group, Content: res.content, Detail: res.err.Error(),
		})
		return
	}
	if !res.sent {
		log.Warn("send control not activated")
		e.emit(schema.RelayEvent{
			Type: schema.EventFailed, Group: res.group, Content: res.content,
			Detail: schema.ErrNoSendControl.Error(),
		})
		return
	}
	e.conv.lastSendAt = e.now()
	e.conv.lastInjected = res.text
	log.Info("reply injected", "text_len", len(res.text))
	e.emit(schema.RelayEvent{
		Type: schema.EventInjected, Group: res.group, Content: res.content, Text: res.text,
	})
}

func (e *Engine) endCycle() {
	if e.cycle == nil {
		return
	}
	e.cycle.cancel()
	e.cycle = nil
}

func (e *Engine) discardCycle(reason string) {
	cyc := e.cycle
	if cyc == nil {
		return
	}
	e.endCycle()
	e.conv.pendingReply = ""
	e.log.Info("relay cycle discarded", "group", cyc.group, "reason", reason)
	e.emit(schema.RelayEvent{
		Type: schema.EventDiscarded, Group: cyc.group, Sender: cyc.sender,
		Content: cyc.content, Detail: reason,
	})
}

// settling reports whether a recent injection makes the window unreliable.
// The host re-renders after an accepted send, and samples taken during that
// settle window would show the injected reply as fresh content.
func (e *Engine) settling(now time.Time) bool {
	if e.conv.lastSendAt.IsZero() {
		return false
	}
	return now.Sub(e.conv.lastSendAt) < e.cfg.DeadZone
}

func (e *Engine) eventMatches(event schema.ChatEvent) bool {
	if e.cfg.HostPackage != "" && event.Package != e.cfg.HostPackage {
		return false
	}
	if len(e.cfg.WindowClasses) == 0 {
		return true
	}
	for _, class := range e.cfg.WindowClasses {
		if class == event.WindowClass {
			return true
		}
	}
	return false
}

func (e *Engine) emit(event schema.RelayEvent) {
	if e.deps.Sink == nil {
		return
	}
	if event.At.IsZero() {
		event.At = e.now()
	}
	e.deps.Sink.OnRelayEvent(event)
}
