package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	migrations "dominion/db"
	httpadapter "dominion/internal/adapter/http"
	metricsinmem "dominion/internal/adapter/metrics/inmemory"
	"dominion/internal/adapter/notify"
	gormrepo "dominion/internal/adapter/repo/gorm"
	"dominion/internal/adapter/repo/memory"
	yamltuning "dominion/internal/adapter/tuning"
	"dominion/internal/app/activity"
	"dominion/internal/app/auth"
	"dominion/internal/app/ledger"
	"dominion/internal/app/outcome"
	"dominion/internal/app/pending"
	"dominion/internal/app/ports"
	"dominion/internal/app/status"
	"dominion/internal/app/turn"
	"dominion/internal/config"
	"dominion/internal/domain/campaign"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/rs/zerolog"
)

type repos struct {
	tx          ports.TxManager
	factions    ports.FactionRepository
	territories ports.TerritoryRepository
	executions  ports.ActivityExecutionRepository
	clock       ports.TurnClockRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := buildLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg config.Config, logger zerolog.Logger) error {
	ctx := context.Background()

	r, err := buildRepos(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if cfg.SeedDemo {
		if err := seedDemo(ctx, r); err != nil {
			return fmt.Errorf("seed demo campaign: %w", err)
		}
	}

	catalog, err := buildCatalog(ctx, tuningProvider(cfg.TuningFile))
	if err != nil {
		return err
	}

	hub := notify.NewHub(logger)
	defer hub.Close()
	sinks := []notify.Sink{hub}
	if cfg.ArchiveDir != "" {
		archive := notify.NewArchive(cfg.ArchiveDir)
		defer archive.Close()
		sinks = append(sinks, archive)
	}
	notifier := notify.NewFanout(logger, sinks...)
	kpiRecorder := metricsinmem.NewRecorder()

	ledgerUC := ledger.UseCase{TxManager: r.tx, Factions: r.factions, Notifier: notifier, Logger: logger, Now: time.Now}
	pendingSvc := pending.Service{TxManager: r.tx, Factions: r.factions, Territories: r.territories, Logger: logger, Now: time.Now}
	resolver, err := outcome.NewResolver(outcome.Resolver{
		TxManager:   r.tx,
		Factions:    r.factions,
		Territories: r.territories,
		Notifier:    notifier,
		Logger:      logger,
		Now:         time.Now,
	})
	if err != nil {
		return fmt.Errorf("outcome table: %w", err)
	}
	cycle, err := turn.NewCycle(turn.Config{
		TxManager:   r.tx,
		Factions:    r.factions,
		Territories: r.territories,
		Clock:       r.clock,
		Catalog:     catalog,
		Notifier:    notifier,
		Metrics:     kpiRecorder,
		Logger:      logger,
		Workers:     cfg.TurnWorkers,
		Now:         time.Now,
	})
	if err != nil {
		return fmt.Errorf("turn cycle: %w", err)
	}
	verify, err := auth.NewVerifyUseCase(cfg.GMKey)
	if err != nil {
		return fmt.Errorf("gm key: %w", err)
	}
	if !verify.Enabled() {
		logger.Warn().Msg("DOMINION_GM_KEY not set; global turn advances are disabled")
	}

	h := httpadapter.Handler{
		LedgerUC: ledgerUC,
		ActivityUC: activity.UseCase{
			TxManager:    r.tx,
			Factions:     r.factions,
			Territories:  r.territories,
			ActivityRepo: r.executions,
			Ledger:       ledgerUC,
			Pending:      pendingSvc,
			Catalog:      catalog,
			Metrics:      kpiRecorder,
			Notifier:     notifier,
			Logger:       logger,
			Now:          time.Now,
		},
		OutcomeUC: resolver,
		Turns:     cycle,
		StatusUC:  status.UseCase{Pending: pendingSvc, Territories: r.territories},
		AuthUC:    verify,
		KPI:       kpiRecorder,
	}

	mux := http.NewServeMux()
	mux.Handle("/feed", hub)
	feed := &http.Server{Addr: cfg.FeedAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := feed.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", cfg.FeedAddr).Msg("feed server failed")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = feed.Shutdown(shutdownCtx)
	}()

	s := server.Default(server.WithHostPorts(cfg.HTTPAddr))
	h.RegisterRoutes(s)

	logger.Info().
		Str("http_addr", cfg.HTTPAddr).
		Str("feed_addr", cfg.FeedAddr).
		Bool("postgres", cfg.DBDSN != "").
		Int("activities", len(catalog.Entries())).
		Msg("dominion server listening")
	s.Spin()
	return nil
}

func buildLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.LogPretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Str("service", "dominion").Logger()
}

func buildRepos(ctx context.Context, cfg config.Config, logger zerolog.Logger) (repos, error) {
	if cfg.DBDSN == "" {
		logger.Warn().Msg("DOMINION_DB_DSN not set; using in-memory store")
		store := memory.NewStore()
		return repos{
			tx:          memory.NewTxManager(store),
			factions:    memory.NewFactionRepo(store),
			territories: memory.NewTerritoryRepo(store),
			executions:  memory.NewActivityExecutionRepo(store),
			clock:       memory.NewTurnClockRepo(store),
		}, nil
	}

	db, err := gormrepo.OpenPostgres(cfg.DBDSN)
	if err != nil {
		return repos{}, err
	}
	if cfg.MigrationsDir != "" {
		err = gormrepo.ApplyMigrations(ctx, db, cfg.MigrationsDir)
	} else {
		err = gormrepo.ApplyMigrationsFS(ctx, db, migrations.Migrations())
	}
	if err != nil {
		return repos{}, fmt.Errorf("migrate: %w", err)
	}
	return repos{
		tx:          gormrepo.NewTxManager(db),
		factions:    gormrepo.NewFactionRepo(db),
		territories: gormrepo.NewTerritoryRepo(db),
		executions:  gormrepo.NewActivityExecutionRepo(db),
		clock:       gormrepo.NewTurnClockRepo(db),
	}, nil
}

func tuningProvider(path string) yamltuning.Provider {
	path = strings.TrimSpace(path)
	if path == "" {
		return yamltuning.Provider{}
	}
	return yamltuning.Provider{Root: filepath.Dir(path), File: filepath.Base(path)}
}

// buildCatalog applies tuning and freezes the catalog; nothing registers after this.
func buildCatalog(ctx context.Context, provider ports.TuningProvider) (*activity.Catalog, error) {
	tuning, err := provider.Load(ctx)
	if err != nil {
		return nil, err
	}
	catalog := activity.DefaultCatalog()
	if err := catalog.ApplyTuning(tuning); err != nil {
		return nil, fmt.Errorf("apply tuning: %w", err)
	}
	catalog.Freeze()
	return catalog, nil
}

// seedDemo creates two rival factions and a handful of territories when absent.
func seedDemo(ctx context.Context, r repos) error {
	return r.tx.RunInTx(ctx, func(txCtx context.Context) error {
		factions := []campaign.Faction{
			campaign.NewFaction("ashen-choir", "Ashen Choir"),
			campaign.NewFaction("iron-accord", "Iron Accord"),
		}
		factions[0].Ledger = campaign.Ledger{campaign.Violence: 6, campaign.Economy: 10, campaign.Culture: 4, campaign.Faith: 6, campaign.Logistics: 5}
		factions[1].Ledger = campaign.Ledger{campaign.Violence: 8, campaign.Economy: 8, campaign.Diplomacy: 4, campaign.Intrigue: 5, campaign.Logistics: 6}
		for _, f := range factions {
			_, err := r.factions.GetByID(txCtx, f.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, ports.ErrNotFound) {
				return err
			}
			f.Version = 1
			if err := r.factions.SaveWithVersion(txCtx, f, 0); err != nil {
				return err
			}
		}

		territories := []campaign.Territory{
			campaign.NewTerritory("ember-vale", false),
			campaign.NewTerritory("saltmarsh", true),
			campaign.NewTerritory("iron-gate", false),
			campaign.NewTerritory("dust-reach", true),
		}
		territories[0].OwnerID, territories[0].Status = "ashen-choir", campaign.StatusOccupied
		territories[0].Mods.TradeYield = 2
		territories[2].OwnerID, territories[2].Status = "iron-accord", campaign.StatusOccupied
		territories[2].Mods.TradeYield = 1
		for _, t := range territories {
			_, err := r.territories.GetByID(txCtx, t.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, ports.ErrNotFound) {
				return err
			}
			t.Version = 1
			if err := r.territories.SaveWithVersion(txCtx, t, 0); err != nil {
				return err
			}
		}
		return nil
	})
}
