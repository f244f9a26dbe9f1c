// Package database opens the local SQLite database and applies schema
// migrations.
//
// The database holds the feedback journal only. It is never read back into
// the feedback store.
//
// Open creates the parent directory, configures busy timeout, foreign keys
// and optional WAL mode, and verifies the connection. Migrate applies the
// pending *.up.sql files of a migration filesystem in version order, each in
// its own transaction, recording them in schema_migrations.
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
package database
