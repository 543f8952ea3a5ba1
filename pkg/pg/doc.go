// Package pg bootstraps the Postgres connection pool used by the subscription,
// usage and ledger stores.
//
// Connect opens a pgxpool.Pool with retries, Healthcheck adapts it to the
// readiness probe, and Migrate runs the embedded goose migrations through the
// database/sql bridge from pgx/v5/stdlib.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations.FS, cfg, log); err != nil {
//		return err
//	}
//
// Error helpers such as IsDuplicateKeyError classify *pgconn.PgError values
// without leaking driver details into the stores.
package pg
