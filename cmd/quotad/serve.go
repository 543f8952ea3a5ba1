package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/moodmoney/quota/migrations"
	"github.com/moodmoney/quota/pkg/auth"
	"github.com/moodmoney/quota/pkg/billing"
	"github.com/moodmoney/quota/pkg/email"
	"github.com/moodmoney/quota/pkg/entitlement"
	"github.com/moodmoney/quota/pkg/file"
	"github.com/moodmoney/quota/pkg/httpserver"
	"github.com/moodmoney/quota/pkg/ledger"
	"github.com/moodmoney/quota/pkg/openai"
	"github.com/moodmoney/quota/pkg/pg"
	"github.com/moodmoney/quota/pkg/redis"
	"github.com/moodmoney/quota/pkg/subscription"
	"github.com/moodmoney/quota/pkg/usage"
	"github.com/moodmoney/quota/svc/api"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg Config) error {
	log := newLogger(cfg)
	log.InfoContext(ctx, "starting quotad", slog.String("version", Version), slog.String("store", cfg.Store))

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	deps, err := buildDeps(ctx, cfg, st, log)
	if err != nil {
		return err
	}

	srv := httpserver.New(cfg.HTTP, api.NewRouter(deps), httpserver.WithLogger(log))
	return srv.Run(ctx)
}

type stores struct {
	subs     subscription.Store
	counters usage.Store
	ledger   ledger.Store
	ready    []httpserver.Check
	closers  []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg Config, log *slog.Logger) (*stores, error) {
	st := &stores{}

	switch cfg.Store {
	case storeMemory:
		log.WarnContext(ctx, "using in-memory stores; data is lost on restart")
		st.subs = subscription.NewMemoryStore()
		st.counters = usage.NewMemoryStore()
		st.ledger = ledger.NewMemoryStore()
	default:
		pgCfg, err := loadPGConfig()
		if err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, pool.Close)

		if pgCfg.AutoMigrate {
			if err := pg.Migrate(ctx, pool, migrations.FS, pgCfg, log); err != nil {
				st.close()
				return nil, err
			}
		}
		st.subs = subscription.NewPGStore(pool)
		st.counters = usage.NewPGStore(pool)
		st.ledger = ledger.NewPGStore(pool)
		st.ready = append(st.ready, httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})
	}

	if cfg.Counters == counterRedis {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			st.close()
			return nil, err
		}
		st.closers = append(st.closers, func() { _ = client.Close() })
		st.counters = usage.NewRedisStore(client, usage.WithKeyPrefix(cfg.Redis.KeyPrefix))
		st.ready = append(st.ready, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
	}
	return st, nil
}

// buildDeps wires the entitlement core and the optional integrations. An
// integration without credentials is left nil and its routes answer 503.
func buildDeps(ctx context.Context, cfg Config, st *stores, log *slog.Logger) (api.Deps, error) {
	verifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		return api.Deps{}, fmt.Errorf("auth: %w", err)
	}

	engine := entitlement.NewEngine(st.subs, st.counters, entitlement.WithLogger(log))
	var recorderOpts []entitlement.RecorderOption
	if cfg.StrictLimits {
		recorderOpts = append(recorderOpts, entitlement.WithStrictLimits())
	}
	recorder := entitlement.NewRecorder(engine, recorderOpts...)

	deps := api.Deps{
		Engine:   engine,
		Recorder: recorder,
		Gate:     entitlement.NewGate(engine, recorder, entitlement.WithActionTimeout(cfg.ActionTimeout)),
		Verifier: verifier,
		Ledger:   st.ledger,
		Ready:    st.ready,
		Log:      log,
	}

	if err := wireBilling(cfg, st, log, &deps); err != nil {
		return api.Deps{}, err
	}

	if cfg.OpenAI.APIKey != "" {
		client, err := openai.NewClient(cfg.OpenAI)
		if err != nil {
			return api.Deps{}, fmt.Errorf("openai: %w", err)
		}
		deps.Chat = client
		deps.Receipts = client
	} else {
		log.WarnContext(ctx, "OPENAI_API_KEY not set; chat and receipt scanning are disabled")
	}

	if cfg.S3.Bucket != "" {
		storage, err := file.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			return api.Deps{}, fmt.Errorf("s3: %w", err)
		}
		deps.Files = storage
	} else {
		log.WarnContext(ctx, "S3_BUCKET not set; receipt scanning is disabled")
	}

	return deps, nil
}

func wireBilling(cfg Config, st *stores, log *slog.Logger, deps *api.Deps) error {
	prices := billing.PriceCatalogFromConfig(cfg.Billing)

	if cfg.Billing.SecretKey != "" {
		deps.Checkout = billing.NewCheckout(billing.NewStripeProvider(cfg.Billing.SecretKey), prices, st.subs, cfg.Billing)
	}
	if cfg.Billing.WebhookSecret == "" {
		log.Warn("STRIPE_WEBHOOK_SECRET not set; subscription changes will not be applied")
		return nil
	}

	sender, err := email.NewSender(cfg.Email)
	if err != nil {
		return errors.Join(errors.New("email sender"), err)
	}
	adapter := billing.NewAdapter(st.subs, prices,
		billing.WithNotifier(email.NewPaymentNotifier(sender, cfg.Email.BillingURL)),
		billing.WithLogger(log),
	)
	deps.Webhook = billing.NewWebhookHandler(cfg.Billing.WebhookSecret, adapter, log)
	return nil
}
