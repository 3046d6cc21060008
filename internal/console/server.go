// Package console exposes a read-only SSH transcript of relay activity.
// Operators attach with a stock ssh client and watch messages being
// forwarded, answered, and injected. The console is meant for loopback or
// trusted networks; it accepts any key and never takes input.
package console

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"

	gliderssh "github.com/gliderlabs/ssh"

	"pkt.systems/chatrelay/internal/eventbus"
	"pkt.systems/chatrelay/schema"
	"pkt.systems/pslog"
)

// Server streams relay events to SSH sessions.
type Server struct {
	Addr        string
	HostKeyPath string
	Listener    net.Listener
	Bus         *eventbus.Bus
	logger      pslog.Logger
}

// ListenAndServe starts the SSH console and shuts down on context
// cancellation.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.logger == nil {
		s.logger = pslog.Ctx(ctx)
	}
	if s.Bus == nil {
		return fmt.Errorf("event bus is required for the console")
	}

	signer, err := EnsureHostKey(s.HostKeyPath)
	if err != nil {
		return err
	}

	server := &gliderssh.Server{
		Addr:    s.Addr,
		Handler: s.handleSession,
	}
	server.AddHostKey(signer)

	errCh := make(chan error, 1)
	go func() {
		if s.Listener != nil {
			errCh <- server.Serve(s.Listener)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	s.logger.Info("console listening", "addr", s.Addr)
	select {
	case <-ctx.Done():
		_ = server.Close()
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleSession(session gliderssh.Session) {
	log := s.logger.With("remote", session.RemoteAddr().String(), "user", session.User())
	log.Info("console session opened")
	defer log.Info("console session closed")

	events, cancel := s.Bus.Subscribe()
	defer cancel()

	if _, err := io.WriteString(session, "chatrelay transcript, ^C to detach\r\n"); err != nil {
		return
	}
	for {
		select {
		case <-session.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if _, err := io.WriteString(session, formatEvent(event)); err != nil {
				return
			}
		}
	}
}

// formatEvent renders one transcript line per event. Reply references get
// their own indented lines so operators can see citation provenance.
func formatEvent(event schema.RelayEvent) string {
	var b strings.Builder
	b.WriteString(event.At.Format("15:04:05"))
	b.WriteString(" [")
	b.WriteString(string(event.Type))
	b.WriteString("]")
	if event.Group != "" {
		b.WriteString(" ")
		b.WriteString(event.Group)
	}
	if event.Sender != "" {
		b.WriteString("/")
		b.WriteString(event.Sender)
	}
	switch {
	case event.Text != "":
		b.WriteString(": ")
		b.WriteString(oneline(event.Text))
	case event.Content != "":
		b.WriteString(": ")
		b.WriteString(oneline(event.Content))
	}
	if event.Detail != "" {
		b.WriteString(" (")
		b.WriteString(event.Detail)
		b.WriteString(")")
	}
	b.WriteString("\r\n")
	for _, ref := range event.References {
		b.WriteString("    ref ")
		b.WriteString(ref)
		b.WriteString("\r\n")
	}
	return b.String()
}

func oneline(text string) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	return text
}
