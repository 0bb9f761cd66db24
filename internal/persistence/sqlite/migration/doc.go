// Package migration applies versioned SQL files to a SQLite database.
//
// Files are read from an fs.FS (normally an embed.FS compiled into the binary)
// and must be named {version}_{description}.sql, e.g. "001_courts.sql". Each
// file runs in its own transaction and is recorded in schema_migrations with
// its checksum, so a run only applies files newer than the recorded versions.
//
//	manager := migration.NewManager(migration.NewScanner(files, "migrations"), migration.NewSQLiteExecutor(db), logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
