package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/redis/go-redis/v9"
	"github.com/tbxark/tripwizard"
	"github.com/tbxark/tripwizard/command"
	"github.com/tbxark/tripwizard/config"
	"github.com/tbxark/tripwizard/dialogue"
	"github.com/tbxark/tripwizard/enrich"
	"github.com/tbxark/tripwizard/session"
	"github.com/tbxark/tripwizard/submit"
	"go.uber.org/zap"
)

// app holds the wired collaborators shared by the commands.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	chat      model.ToolCallingChatModel
	parser    enrich.IntentParser
	assistant *tripwizard.Assistant
	commands  command.Parser
	trips     submit.TripStore
	runs      session.Store[tripwizard.Checkpoint]
	closers   []func() error
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: log}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	chat, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	a.chat = chat

	parser, err := enrich.NewToolBasedIntentParser(chat)
	if err != nil {
		return nil, err
	}
	a.parser = parser

	programs, err := a.programGenerator()
	if err != nil {
		return nil, err
	}

	var places enrich.PlaceLookup
	if cfg.Places.APIKey != "" {
		places = enrich.NewPlacesClient(cfg.Places.APIKey,
			enrich.WithBaseURL(cfg.Places.BaseURL),
			enrich.WithLanguage(cfg.Places.Language),
			enrich.WithHTTPClient(&http.Client{Timeout: cfg.Places.Timeout}),
		)
	} else {
		log.Info("places api key not set, hotel lookup disabled")
	}

	enricherOpts := []submit.EnricherOption{
		submit.WithRatios(cfg.Pricing.B2BRatio, cfg.Pricing.PublicRatio),
		submit.WithMaxPhotos(cfg.Pricing.MaxPhotos),
	}
	if cfg.YouTube.APIKey != "" {
		videos := enrich.NewYouTubeClient(cfg.YouTube.APIKey,
			enrich.WithVideosBaseURL(cfg.YouTube.BaseURL),
			enrich.WithVideoQuery(cfg.YouTube.QueryPrefix),
			enrich.WithVideosHTTPClient(&http.Client{Timeout: cfg.YouTube.Timeout}),
		)
		enricherOpts = append(enricherOpts, submit.WithVideos(videos, cfg.YouTube.MaxResults))
	} else {
		log.Info("youtube api key not set, destination videos disabled")
	}

	trips, err := a.tripStore(ctx)
	if err != nil {
		return nil, err
	}
	a.trips = trips

	runs, err := a.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	a.runs = runs

	enricher := submit.NewPricingEnricher(places, enricherOpts...)
	renderer := submit.NewHTMLPreviewRenderer(submit.Agency(cfg.Agency), submit.Style(cfg.Wizard.PreviewStyle))
	pipeline := submit.NewPipeline(enricher, renderer, trips)

	opts := []tripwizard.Option{
		tripwizard.WithTimeout(cfg.LLM.Timeout),
		tripwizard.WithDepartureAddress(cfg.Wizard.DefaultDepartureAddress),
	}
	if places != nil {
		opts = append(opts, tripwizard.WithPlaces(places))
	}
	if cfg.LLM.APIKey != "" {
		opts = append(opts, tripwizard.WithDialogue(dialogue.NewFailbackDialogueGenerator(
			dialogue.NewToolBasedDialogueGenerator(chat),
			&dialogue.LocalDialogueGenerator{},
		)))
	}
	assistant, err := tripwizard.New(parser, programs, pipeline, opts...)
	if err != nil {
		return nil, err
	}
	a.assistant = assistant

	commands := []command.Parser{command.NewLocalCommandParser()}
	if cfg.LLM.APIKey != "" {
		toolParser, err := command.NewToolBasedCommandParser(chat)
		if err != nil {
			return nil, err
		}
		commands = append(commands, toolParser)
	}
	a.commands = command.NewFailbackCommandParser(commands...)
	return a, nil
}

func (a *app) programGenerator() (enrich.ProgramGenerator, error) {
	toolBased, err := enrich.NewToolBasedProgramGenerator(a.chat)
	if err != nil {
		return nil, err
	}
	if !a.cfg.Wizard.ProgramFallback {
		return toolBased, nil
	}
	return enrich.NewFailbackProgramGenerator(toolBased, enrich.TemplateProgramGenerator{}), nil
}

func (a *app) tripStore(ctx context.Context) (submit.TripStore, error) {
	if a.cfg.Trips.Backend != "postgres" {
		return submit.NewMemoryTripStore(), nil
	}
	db, err := submit.OpenPostgres(submit.PostgresConfig{
		DSN:             a.cfg.Postgres.DSN(),
		MaxOpenConns:    a.cfg.Postgres.MaxConnections,
		MaxIdleConns:    a.cfg.Postgres.MaxIdle,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}
	store := submit.NewPostgresTripStore(db)
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	a.logger.Info("trips stored in postgres",
		zap.String("host", a.cfg.Postgres.Host),
		zap.String("database", a.cfg.Postgres.Database))
	return store, nil
}

func (a *app) sessionStore(ctx context.Context) (session.Store[tripwizard.Checkpoint], error) {
	if a.cfg.Session.Backend != "redis" {
		return session.NewStore[tripwizard.Checkpoint](session.NewMemoryCache[tripwizard.Checkpoint](a.cfg.Session.TTL), session.DefaultNamespace), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Address,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	a.closers = append(a.closers, client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		return session.Store[tripwizard.Checkpoint]{}, fmt.Errorf("failed to reach redis: %w", err)
	}
	a.logger.Info("sessions stored in redis", zap.String("address", a.cfg.Redis.Address))
	cache := session.NewRedisCache[tripwizard.Checkpoint](client, a.cfg.Session.TTL)
	return session.NewStore[tripwizard.Checkpoint](cache, session.DefaultNamespace), nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
