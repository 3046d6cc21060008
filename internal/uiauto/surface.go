// Package uiauto drives the mirrored chat window over the Chrome DevTools
// protocol. The host application's view tree is exposed as a DOM whose nodes
// carry resource-id attributes; this package samples that tree, reports
// content changes, and injects reply text into the compose field.
package uiauto

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"pkt.systems/chatrelay/internal/hostids"
	"pkt.systems/chatrelay/schema"
	"pkt.systems/pslog"
)

const (
	// DefaultSettleDelay is the pause between writing compose text and
	// activating the send control. The host needs it to register the text.
	DefaultSettleDelay = 2 * time.Second

	// DefaultSendLabel is the visible label of the host's send control.
	DefaultSendLabel = "发送"

	watchInterval = 300 * time.Millisecond
	eventDepth    = 8
)

// Config configures the UI surface.
type Config struct {
	// AttachURL is a remote DevTools endpoint. Empty starts a local browser.
	AttachURL string
	// PageURL is the mirror page to open at startup.
	PageURL string
	// Headless applies when a local browser is started.
	Headless bool
	// SettleDelay overrides DefaultSettleDelay when positive.
	SettleDelay time.Duration
	// SendLabel overrides DefaultSendLabel when set.
	SendLabel string
	// HostPackage and WindowClass stamp the change events this surface emits.
	HostPackage string
	WindowClass string
	// Identifiers is the view identifier table for the running host version.
	Identifiers hostids.Table
	Logger      pslog.Logger
}

// Surface owns a browser tab attached to the mirrored chat window. All tree
// access is marshalled onto a single executor goroutine; the DevTools session
// is not safe for concurrent commands.
type Surface struct {
	cfg    Config
	log    pslog.Logger
	settle time.Duration
	label  string

	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc

	runCh     chan func(context.Context)
	events    chan schema.ChatEvent
	closed    chan struct{}
	closeOnce sync.Once
}

// New attaches to the mirror page and starts the executor and change watcher.
func New(cfg Config) (*Surface, error) {
	if strings.TrimSpace(cfg.PageURL) == "" {
		return nil, errors.New("uiauto: page url is required")
	}
	log := cfg.Logger
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	settle := cfg.SettleDelay
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	label := cfg.SendLabel
	if label == "" {
		label = DefaultSendLabel
	}

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if url := strings.TrimSpace(cfg.AttachURL); url != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), url)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.Headless),
			chromedp.Flag("disable-gpu", cfg.Headless),
		)
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(cfg.PageURL),
		chromedp.Evaluate(observeScript, nil),
	); err != nil {
		tabCancel()
		allocCancel()
		return nil, err
	}

	s := &Surface{
		cfg:         cfg,
		log:         log.With("page_url", cfg.PageURL),
		settle:      settle,
		label:       label,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		runCh:       make(chan func(context.Context)),
		events:      make(chan schema.ChatEvent, eventDepth),
		closed:      make(chan struct{}),
	}
	go s.executor()
	go s.watch()
	s.log.Info("ui surface attached", "headless", cfg.Headless, "remote", cfg.AttachURL != "")
	return s, nil
}

// Events returns the content change notification stream. The channel is
// never closed while the surface is open; a full channel drops events, the
// next sample sees the accumulated state anyway.
func (s *Surface) Events() <-chan schema.ChatEvent {
	return s.events
}

// Sample reads the current chat window state.
func (s *Surface) Sample(ctx context.Context) (schema.Snapshot, error) {
	var dto sampleDTO
	err := s.run(ctx, func(tabCtx context.Context) error {
		return chromedp.Run(tabCtx, chromedp.Evaluate(sampleScript(s.cfg.Identifiers), &dto))
	})
	if err != nil {
		return schema.Snapshot{}, err
	}
	return parseSnapshot(dto), nil
}

// Inject writes text into the compose field, waits for the host to settle,
// and clicks every control carrying the send label.
func (s *Surface) Inject(ctx context.Context, text string) (bool, error) {
	var clicked int
	err := s.run(ctx, func(tabCtx context.Context) error {
		var composed bool
		if err := chromedp.Run(tabCtx, chromedp.Evaluate(composeScript(s.cfg.Identifiers.ComposeField, text), &composed)); err != nil {
			return err
		}
		if !composed {
			return schema.ErrNoComposeField
		}
		select {
		case <-time.After(s.settle):
		case <-tabCtx.Done():
			return tabCtx.Err()
		}
		return chromedp.Run(tabCtx, chromedp.Evaluate(clickSendScript(s.label), &clicked))
	})
	if err != nil {
		return false, err
	}
	if clicked == 0 {
		return false, schema.ErrNoSendControl
	}
	s.log.Debug("reply injected", "send_controls", clicked, "chars", len(text))
	return true, nil
}

// Close detaches from the browser. Pending executor work is abandoned.
func (s *Surface) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.tabCancel()
		s.allocCancel()
		s.log.Info("ui surface closed")
	})
}

// run marshals fn onto the executor goroutine and waits for its result. The
// caller context only abandons the wait; the tab command runs to completion.
func (s *Surface) run(ctx context.Context, fn func(context.Context) error) error {
	errCh := make(chan error, 1)
	select {
	case s.runCh <- func(tabCtx context.Context) { errCh <- fn(tabCtx) }:
	case <-s.closed:
		return schema.ErrSurfaceClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-errCh:
		return err
	case <-s.closed:
		return schema.ErrSurfaceClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Surface) executor() {
	for {
		select {
		case fn := <-s.runCh:
			fn(s.tabCtx)
		case <-s.closed:
			return
		}
	}
}

// watch polls the mutation counter installed by observeScript and turns
// increments into change events. Only the fact that something changed
// matters, so a burst of mutations collapses into one event per poll.
func (s *Surface) watch() {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()
	last := 0
	for {
		select {
		case <-s.closed:
			return
		case <-ticker.C:
		}
		var count int
		err := s.run(context.Background(), func(tabCtx context.Context) error {
			return chromedp.Run(tabCtx, chromedp.Evaluate(`window.__mirrorMutations || 0`, &count))
		})
		if err != nil {
			if errors.Is(err, schema.ErrSurfaceClosed) {
				return
			}
			s.log.Warn("mutation poll failed", "err", err)
			continue
		}
		if count == last {
			continue
		}
		last = count
		event := schema.ChatEvent{
			WindowClass: s.cfg.WindowClass,
			Package:     s.cfg.HostPackage,
			At:          time.Now(),
		}
		select {
		case s.events <- event:
		default:
			s.log.Trace("change event dropped")
		}
	}
}

const observeScript = `(() => {
	if (window.__mirrorObserver) { return; }
	window.__mirrorMutations = 0;
	const obs = new MutationObserver(() => { window.__mirrorMutations++; });
	obs.observe(document.documentElement, {childList: true, subtree: true, characterData: true});
	window.__mirrorObserver = obs;
})()`
