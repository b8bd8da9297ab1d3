package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/Huddle/internal/client"
	"github.com/dkeye/Huddle/internal/client/view"
	"github.com/dkeye/Huddle/internal/client/voice"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	fs := config.ClientFlags()
	verbose := fs.BoolP("verbose", "v", false, "debug logging")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatal().Err(err).Msg("bad flags")
	}
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	cfg, err := config.LoadClient(fs)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load client config")
	}

	user, err := domain.NewUser(domain.UserID(cfg.User), cfg.Name, cfg.Avatar)
	if err != nil {
		log.Fatal().Err(err).Msg("bad identity")
	}

	s, err := client.Open(ctx, client.Options{
		ServerURL:         cfg.Server,
		User:              *user,
		Community:         domain.CommunityID(cfg.Community),
		Muted:             cfg.Muted,
		Deafened:          cfg.Deafened,
		HeartbeatInterval: cfg.HeartbeatInterval,
		Notifier: voice.NotifyFunc(func(n voice.Notice) {
			log.Error().Err(n.Err).Str("channel", string(n.ChannelID)).Stringer("kind", n.Kind).Msg("voice")
		}),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open session")
	}

	s.View.Subscribe(logSnapshot)

	if cfg.Text != "" {
		if err := s.Presence.SetActiveText(domain.ChannelID(cfg.Text)); err != nil {
			log.Warn().Err(err).Msg("set active text channel")
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if cfg.Voice == "" {
			return nil
		}
		return s.Voice.Join(gctx, domain.ChannelID(cfg.Voice))
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-s.Done():
			log.Warn().Msg("signaling connection lost")
		}
		return s.Close()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, voice.ErrSuperseded) {
		log.Error().Err(err).Msg("voicectl error")
		os.Exit(1)
	}
	log.Info().Msg("bye")
}

func logSnapshot(snap view.Snapshot) {
	e := log.Info().Str("state", snap.Self.State.String()).Bool("muted", snap.Self.Muted).Bool("deafened", snap.Self.Deafened)
	for ch, list := range snap.VoiceByChannel {
		names := make([]string, 0, len(list))
		for _, p := range list {
			names = append(names, p.Username)
		}
		e = e.Strs("voice:"+string(ch), names)
	}
	for ch, list := range snap.TextByChannel {
		names := make([]string, 0, len(list))
		for _, r := range list {
			names = append(names, r.Username)
		}
		e = e.Strs("text:"+string(ch), names)
	}
	e.Msg("view")
}
