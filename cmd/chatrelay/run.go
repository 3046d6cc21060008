package main

import (
	"context"
	"errors"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/chatrelay"
	"pkt.systems/chatrelay/internal/appconfig"
	"pkt.systems/chatrelay/internal/hostids"
	"pkt.systems/chatrelay/internal/persist"
	"pkt.systems/chatrelay/internal/uiauto"
	"pkt.systems/chatrelay/relayhttp"
	"pkt.systems/pslog"
)

func newRunCmd() *cobra.Command {
	var cfgPath string
	var headful bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the relay against the configured chat window",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Surface.PageURL) == "" {
				return errors.New("surface.page_url is required; point it at the mirrored chat window")
			}
			if headful {
				cfg.Surface.Headless = false
			}

			store, err := persist.NewStoreWithLogger(cfg.SettingsFile, logger)
			if err != nil {
				return err
			}
			if url, _, err := store.RelaySettings(); err == nil && url == "" {
				logger.Warn("backend url not configured; set it with: chatrelay settings set-url <url>")
			}

			client, err := relayhttp.NewClient(relayhttp.Config{
				ConnectTimeout: time.Duration(cfg.Relay.ConnectTimeoutSeconds) * time.Second,
				RequestTimeout: time.Duration(cfg.Relay.RequestTimeoutSeconds) * time.Second,
			}, store, logger)
			if err != nil {
				return err
			}

			ids := resolveIdentifiers(cfg.Surface, logger)
			surface, err := uiauto.New(uiauto.Config{
				AttachURL:   cfg.Surface.AttachURL,
				PageURL:     cfg.Surface.PageURL,
				Headless:    cfg.Surface.Headless,
				SettleDelay: time.Duration(cfg.Surface.SettleMs) * time.Millisecond,
				SendLabel:   cfg.Surface.SendLabel,
				HostPackage: cfg.Engine.HostPackage,
				WindowClass: firstWindowClass(cfg.Engine.WindowClasses),
				Identifiers: ids,
				Logger:      logger,
			})
			if err != nil {
				return err
			}
			defer surface.Close()

			relay, err := chatrelay.New(chatrelay.RelayConfig{
				Engine: cfg.EngineSettings(),
				Console: chatrelay.ConsoleConfig{
					Enabled:     cfg.Console.Enabled,
					Addr:        cfg.Console.Addr,
					HostKeyPath: cfg.Console.HostKeyPath,
				},
			}, chatrelay.RelayDeps{
				Reader:   surface,
				Injector: surface,
				Client:   client,
				Events:   surface.Events(),
				Logger:   logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := relay.Stop(stopCtx); err != nil {
					logger.Warn("relay stop failed", "err", err)
				}
			}()
			if err := relay.Start(ctx); err != nil {
				return err
			}
			return relay.Wait()
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().BoolVar(&headful, "headful", false, "run the browser with a visible window")
	return cmd
}

func firstWindowClass(classes []string) string {
	if len(classes) == 0 {
		return ""
	}
	return classes[0]
}

// resolveIdentifiers picks the identifier table for the configured host
// version and applies per-field overrides. Unknown versions fall back to the
// newest table with a warning instead of refusing to start.
func resolveIdentifiers(cfg appconfig.SurfaceConfig, logger pslog.Logger) hostids.Table {
	ids, known := hostids.Resolve(cfg.HostVersion)
	if !known {
		logger.Warn("unknown host version, using newest identifier table",
			"host_version", cfg.HostVersion,
			"known_versions", strings.Join(hostids.Versions(), ", "),
		)
	}
	if cfg.IDs.GroupName != "" {
		ids.GroupName = cfg.IDs.GroupName
	}
	if cfg.IDs.SenderName != "" {
		ids.SenderName = cfg.IDs.SenderName
	}
	if cfg.IDs.MessageBody != "" {
		ids.MessageBody = cfg.IDs.MessageBody
	}
	if cfg.IDs.ComposeField != "" {
		ids.ComposeField = cfg.IDs.ComposeField
	}
	if cfg.IDs.SenderRow != "" {
		ids.SenderRow = cfg.IDs.SenderRow
	}
	if cfg.IDs.Avatar != "" {
		ids.Avatar = cfg.IDs.Avatar
	}
	return ids
}
