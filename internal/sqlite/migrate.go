package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/myrjola/habitapp/internal/errors"
)

// migrateTo makes the live schema match schemaDefinition.
//
// The target schema is created in a scratch in-memory database that is attached as schemaTarget. Tables, indexes and
// triggers are then diffed against sqlite_schema:
//
//  1. tables missing from the target are dropped,
//  2. tables missing from the live database are created,
//  3. changed tables are rebuilt with the 12-step procedure of https://www.sqlite.org/lang_altertable.html#otheralter
//     keeping the columns both versions share,
//  4. triggers and indexes are dropped, created or recreated.
//
// See https://david.rothlis.net/declarative-schema-migration-for-sqlite/.
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) error {
	start := time.Now()

	detach, err := db.attachSchemaTarget(ctx, schemaDefinition)
	if err != nil {
		return errors.Wrap(err, "attach schema target")
	}
	defer detach()

	if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return errors.Wrap(err, "disable foreign keys")
	}
	defer db.enableForeignKeys(ctx)

	var tx *sql.Tx
	if tx, err = db.ReadWrite.BeginTx(ctx, nil); err != nil {
		return errors.Wrap(err, "begin migration")
	}
	defer db.rollback(ctx, tx)

	m := migration{tx: tx, logger: db.logger, summary: migrationSummary{}}
	if err = m.tables(ctx); err != nil {
		return err
	}
	for _, typ := range []schemaType{schemaTypeTrigger, schemaTypeIndex} {
		if err = m.entities(ctx, typ); err != nil {
			return err
		}
	}
	if _, err = tx.ExecContext(ctx, "PRAGMA foreign_key_check"); err != nil {
		return errors.Wrap(err, "foreign key check")
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit migration")
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database",
		slog.Duration("duration", time.Since(start)),
		slog.Int("created", m.summary.created),
		slog.Int("dropped", m.summary.dropped),
		slog.Int("rebuilt", m.summary.rebuilt))
	return nil
}

// enableForeignKeys turns foreign key enforcement back on. Running without it risks silent corruption so failing here
// shuts the process down.
func (db *Database) enableForeignKeys(ctx context.Context) {
	if _, err := db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.logger.LogAttrs(ctx, slog.LevelError, "re-enable foreign keys failed, exiting",
			errors.SlogError(errors.Wrap(err, "enable foreign keys")))
		if err = syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
			os.Exit(1)
		}
	}
}

// attachSchemaTarget attaches an in-memory database holding schemaDefinition. The returned function detaches it.
func (db *Database) attachSchemaTarget(ctx context.Context, schemaDefinition string) (func(), error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", rand.Text())
	target, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open schema target")
	}
	// The shared cache keeps the in-memory database alive while attached, so this handle can be closed right away.
	defer func() {
		if closeErr := target.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "close schema target failed",
				errors.SlogError(errors.Wrap(closeErr, "close schema target")))
		}
	}()
	if _, err = target.ExecContext(ctx, schemaDefinition); err != nil {
		return nil, errors.Wrap(err, "create target schema")
	}
	if _, err = db.ReadWrite.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", dsn); err != nil {
		return nil, errors.Wrap(err, "attach")
	}
	return func() {
		if _, detachErr := db.ReadWrite.ExecContext(ctx, "DETACH DATABASE schemaTarget"); detachErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "detach schema target failed",
				errors.SlogError(errors.Wrap(detachErr, "detach")))
		}
	}, nil
}

func (db *Database) rollback(ctx context.Context, tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		db.logger.LogAttrs(ctx, slog.LevelError, "rollback failed", errors.SlogError(errors.Wrap(err, "rollback")))
	}
}

type schemaType string

const (
	schemaTypeTable   schemaType = "table"
	schemaTypeTrigger schemaType = "trigger"
	schemaTypeIndex   schemaType = "index"
)

type migrationSummary struct {
	created int
	dropped int
	rebuilt int
}

// migration is a single schema synchronisation inside tx.
type migration struct {
	tx      *sql.Tx
	logger  *slog.Logger
	summary migrationSummary
}

// Internal SQLite and Litestream bookkeeping tables are never touched.
const skipInternal = `name NOT LIKE 'sqlite_%' AND name NOT LIKE '_litestream_%'`

// liveOnlyQuery lists names of typ present only in the live schema.
const liveOnlyQuery = `SELECT name FROM sqlite_schema
WHERE type = :type AND ` + skipInternal + `
  AND name NOT IN (SELECT name FROM schemaTarget.sqlite_schema WHERE type = :type)`

// targetOnlyQuery lists the SQL of entities of typ present only in the target schema.
const targetOnlyQuery = `SELECT sql FROM schemaTarget.sqlite_schema
WHERE type = :type AND ` + skipInternal + ` AND sql IS NOT NULL
  AND name NOT IN (SELECT name FROM main.sqlite_schema WHERE type = :type)`

// changedQuery lists entities of typ whose definition differs. A table rename quotes the table name, so quotes are
// ignored in the comparison.
const changedQuery = `SELECT live.name, live.sql, target.sql
FROM main.sqlite_schema AS live
         JOIN schemaTarget.sqlite_schema AS target ON live.name = target.name AND live.type = target.type
WHERE live.type = :type
  AND live.name NOT LIKE 'sqlite_%' AND live.name NOT LIKE '_litestream_%'
  AND REPLACE(live.sql, '"', '') <> REPLACE(target.sql, '"', '')`

// tables drops, creates and rebuilds tables.
func (m *migration) tables(ctx context.Context) error {
	if err := m.dropRemoved(ctx, schemaTypeTable); err != nil {
		return err
	}
	if err := m.createAdded(ctx, schemaTypeTable); err != nil {
		return err
	}
	changed, err := m.changed(ctx, schemaTypeTable)
	if err != nil {
		return err
	}
	for _, c := range changed {
		if err = m.rebuildTable(ctx, c); err != nil {
			return errors.Wrap(err, "rebuild table", slog.String("table", c.name))
		}
	}
	return nil
}

// entities synchronises indexes or triggers. Changed entities are recreated.
func (m *migration) entities(ctx context.Context, typ schemaType) error {
	if err := m.dropRemoved(ctx, typ); err != nil {
		return err
	}
	if err := m.createAdded(ctx, typ); err != nil {
		return err
	}
	changed, err := m.changed(ctx, typ)
	if err != nil {
		return err
	}
	for _, c := range changed {
		if err = m.exec(ctx, fmt.Sprintf("DROP %s %s", strings.ToUpper(string(typ)), c.name)); err != nil {
			return err
		}
		if err = m.exec(ctx, c.newSQL); err != nil {
			return err
		}
		m.summary.rebuilt++
	}
	return nil
}

func (m *migration) dropRemoved(ctx context.Context, typ schemaType) error {
	removed, err := m.queryStrings(ctx, liveOnlyQuery, sql.Named("type", string(typ)))
	if err != nil {
		return errors.Wrap(err, "query removed", slog.String("type", string(typ)))
	}
	for _, name := range removed {
		if err = m.exec(ctx, fmt.Sprintf("DROP %s %s", strings.ToUpper(string(typ)), name)); err != nil {
			return err
		}
		m.summary.dropped++
	}
	return nil
}

func (m *migration) createAdded(ctx context.Context, typ schemaType) error {
	added, err := m.queryStrings(ctx, targetOnlyQuery, sql.Named("type", string(typ)))
	if err != nil {
		return errors.Wrap(err, "query added", slog.String("type", string(typ)))
	}
	for _, stmt := range added {
		if err = m.exec(ctx, stmt); err != nil {
			return err
		}
		m.summary.created++
	}
	return nil
}

type changedSchema struct {
	name    string
	liveSQL string
	newSQL  string
}

func (m *migration) changed(ctx context.Context, typ schemaType) (_ []changedSchema, err error) {
	rows, err := m.tx.QueryContext(ctx, changedQuery, sql.Named("type", string(typ)))
	if err != nil {
		return nil, errors.Wrap(err, "query changed", slog.String("type", string(typ)))
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()
	var changed []changedSchema
	for rows.Next() {
		var c changedSchema
		if err = rows.Scan(&c.name, &c.liveSQL, &c.newSQL); err != nil {
			return nil, errors.Wrap(err, "scan changed")
		}
		changed = append(changed, c)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate changed")
	}
	return changed, nil
}

// rebuildTable creates the new definition under a temporary name, copies the shared columns, drops the old table and
// renames the new one into place.
func (m *migration) rebuildTable(ctx context.Context, c changedSchema) error {
	m.logger.LogAttrs(ctx, slog.LevelInfo, "rebuilding table",
		slog.String("table", c.name), slog.String("live_sql", c.liveSQL), slog.String("new_sql", c.newSQL))

	temp := c.name + "_migration_temp"
	if err := m.exec(ctx, strings.Replace(c.newSQL, c.name, temp, 1)); err != nil {
		return err
	}
	// Quoted so that columns named after SQLite keywords survive.
	columns, err := m.queryStrings(ctx, `SELECT '"' || target.name || '"'
FROM PRAGMA_TABLE_INFO(:table) AS live
         JOIN PRAGMA_TABLE_INFO(:table, 'schemaTarget') AS target ON target.name = live.name`,
		sql.Named("table", c.name))
	if err != nil {
		return errors.Wrap(err, "query shared columns")
	}
	shared := strings.Join(columns, ", ")
	for _, stmt := range []string{
		fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", temp, shared, shared, c.name),
		"DROP TABLE " + c.name,
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", temp, c.name),
	} {
		if err = m.exec(ctx, stmt); err != nil {
			return err
		}
	}
	m.summary.rebuilt++
	return nil
}

func (m *migration) exec(ctx context.Context, stmt string) error {
	m.logger.LogAttrs(ctx, slog.LevelInfo, "migration statement", slog.String("query", stmt))
	if _, err := m.tx.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "exec migration statement", slog.String("query", stmt))
	}
	return nil
}

// queryStrings runs a query returning a single text column.
func (m *migration) queryStrings(ctx context.Context, query string, args ...any) (_ []string, err error) {
	rows, err := m.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query")
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()
	var results []string
	for rows.Next() {
		var s string
		if err = rows.Scan(&s); err != nil {
			return nil, errors.Wrap(err, "scan")
		}
		results = append(results, s)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate")
	}
	return results, nil
}
