// skybridge relays messages between IRC channels and WebSocket observers,
// with an AI persona participating in each channel.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/benevolentsky/skybridge/pkg/api"
	"github.com/benevolentsky/skybridge/pkg/bridge"
	"github.com/benevolentsky/skybridge/pkg/bus"
	"github.com/benevolentsky/skybridge/pkg/config"
	"github.com/benevolentsky/skybridge/pkg/irc"
	"github.com/benevolentsky/skybridge/pkg/logger"
	"github.com/benevolentsky/skybridge/pkg/persona"
	"github.com/benevolentsky/skybridge/pkg/providers"
	"github.com/benevolentsky/skybridge/pkg/reply"
	"github.com/benevolentsky/skybridge/pkg/telemetry"
	"github.com/benevolentsky/skybridge/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.LogLevel)
	telemetry.Init()

	personas := persona.DefaultSet()
	if cfg.PersonasFile != "" {
		n, err := personas.LoadFile(cfg.PersonasFile)
		if err != nil {
			return fmt.Errorf("load personas: %w", err)
		}
		logger.InfoCF("main", "Personas loaded", map[string]interface{}{
			"file":  cfg.PersonasFile,
			"bound": n,
		})
	}

	var completer providers.Completer
	if cfg.CompletionEnabled() {
		completer = providers.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
		logger.InfoCF("main", "Remote completion enabled", map[string]interface{}{
			"model": cfg.OpenAIModel,
		})
	} else {
		logger.InfoC("main", "No completion credential configured - fallback-only mode")
	}
	engine := reply.NewEngine(completer)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b := bus.New()
	registry := bridge.NewRegistry()

	for _, channel := range cfg.IRCChannels {
		p := personas.ForChannel(channel)
		opts := []irc.Option{irc.WithHeartbeat(cfg.HeartbeatInterval)}
		if cfg.IRCNick != "" {
			opts = append(opts, irc.WithNick(cfg.IRCNick))
		}
		client := irc.NewClient(cfg.IRCServer, cfg.IRCPort, channel, p, b, opts...)
		registry.Register(client)
		go func() {
			if err := client.Run(ctx); err != nil {
				logger.ErrorCF("main", "IRC transport exited", map[string]interface{}{
					"channel": client.Name(),
					"error":   err.Error(),
				})
			}
		}()
		logger.InfoCF("main", "Channel registered", map[string]interface{}{
			"channel": channel,
			"persona": p.Name,
		})
	}

	srv := api.NewServer(cfg.HTTPPort, registry, api.NewWSHub(b), web.Static)
	coordinator := bridge.NewCoordinator(registry, personas, engine, b, srv.Hub())
	go coordinator.Run(ctx)

	if err := srv.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	logger.InfoC("main", "Shutting down")
	if err := srv.Stop(); err != nil {
		logger.WarnCF("main", "Server shutdown error", map[string]interface{}{
			"error": err.Error(),
		})
	}
	b.Close()
	return nil
}
