package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/myrjola/habitapp/internal/errors"
)

// Tables that are never exported because they hold data of other users.
//
//nolint:gochecknoglobals // read-only list.
var exportExcluded = []string{"sessions"}

// exportTable is a table to copy and the column identifying the owning user, empty for catalog tables copied whole.
type exportTable struct {
	name       string
	userColumn string
}

// ExportUserData writes everything stored about userID into a new SQLite file in dir and returns its path.
//
// Tables with a foreign key to users are filtered by the owner. Tables without foreign keys, such as the meal and shot
// catalogs, are copied whole so that the export can be read on its own.
func (db *Database) ExportUserData(ctx context.Context, userID int, dir string) (_ string, err error) {
	path := filepath.Join(dir, fmt.Sprintf("habitapp-user-%d.sqlite3", userID))

	conn, err := db.ReadOnly.Conn(ctx)
	if err != nil {
		return "", errors.Wrap(err, "get connection")
	}
	defer func() {
		err = errors.Join(err, conn.Close())
	}()
	// The read-only pool refuses writes, lift that for the attached export database only. Tables are copied in name
	// order, so foreign keys stay off until the copy is done.
	if err = setPragmas(ctx, conn, "query_only = FALSE", "foreign_keys = OFF"); err != nil {
		return "", err
	}
	defer func() {
		err = errors.Join(err, setPragmas(context.WithoutCancel(ctx), conn, "query_only = TRUE", "foreign_keys = ON"))
	}()

	if _, err = conn.ExecContext(ctx, "ATTACH DATABASE ? AS export", fmt.Sprintf("file:%s?mode=rwc", path)); err != nil {
		return "", errors.Wrap(err, "attach export", slog.String("path", path))
	}
	defer func() {
		if _, detachErr := conn.ExecContext(context.WithoutCancel(ctx), "DETACH DATABASE export"); detachErr != nil {
			err = errors.Join(err, errors.Wrap(detachErr, "detach export"))
		}
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "begin export")
	}
	defer db.rollback(ctx, tx)

	tables, err := exportTables(ctx, tx)
	if err != nil {
		return "", err
	}
	for _, t := range tables {
		if err = copyTable(ctx, tx, t, userID); err != nil {
			return "", errors.Wrap(err, "copy table", slog.String("table", t.name))
		}
	}
	if err = tx.Commit(); err != nil {
		return "", errors.Wrap(err, "commit export")
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "exported user data",
		slog.Int("user_id", userID), slog.String("path", path), slog.Int("tables", len(tables)))
	return path, nil
}

// exportTables finds the users table, the tables owned by a user and the catalog tables.
func exportTables(ctx context.Context, tx *sql.Tx) (_ []exportTable, err error) {
	rows, err := tx.QueryContext(ctx, `SELECT m.name, COALESCE(fk."from", ''), COALESCE(fk."table", '')
FROM main.sqlite_schema AS m
         LEFT JOIN PRAGMA_FOREIGN_KEY_LIST(m.name) AS fk
WHERE m.type = 'table'
  AND m.name NOT LIKE 'sqlite_%'
  AND m.name NOT LIKE '_litestream_%'
ORDER BY m.name`)
	if err != nil {
		return nil, errors.Wrap(err, "query foreign keys")
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()

	type references struct {
		userColumn string
		others     bool
	}
	var (
		names []string
		refs  = map[string]*references{}
	)
	for rows.Next() {
		var name, from, target string
		if err = rows.Scan(&name, &from, &target); err != nil {
			return nil, errors.Wrap(err, "scan foreign key")
		}
		r, ok := refs[name]
		if !ok {
			r = &references{userColumn: "", others: false}
			refs[name] = r
			names = append(names, name)
		}
		switch target {
		case "":
		case "users":
			r.userColumn = from
		default:
			r.others = true
		}
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate foreign keys")
	}
	if refs["users"] == nil {
		return nil, errors.New("users table does not exist")
	}

	var tables []exportTable
	for _, name := range names {
		r := refs[name]
		switch {
		case slices.Contains(exportExcluded, name):
		case name == "users":
			tables = append(tables, exportTable{name: name, userColumn: "id"})
		case r.userColumn != "":
			tables = append(tables, exportTable{name: name, userColumn: r.userColumn})
		case !r.others:
			tables = append(tables, exportTable{name: name, userColumn: ""})
		}
	}
	return tables, nil
}

func setPragmas(ctx context.Context, conn *sql.Conn, pragmas ...string) error {
	for _, p := range pragmas {
		if _, err := conn.ExecContext(ctx, "PRAGMA "+p); err != nil {
			return errors.Wrap(err, "set pragma", slog.String("pragma", p))
		}
	}
	return nil
}

func copyTable(ctx context.Context, tx *sql.Tx, t exportTable, userID int) error {
	var createSQL string
	if err := tx.QueryRowContext(ctx, `SELECT sql FROM main.sqlite_schema WHERE type = 'table' AND name = ?`,
		t.name).Scan(&createSQL); err != nil {
		return errors.Wrap(err, "read table definition")
	}
	exportSQL := strings.Replace(createSQL, "CREATE TABLE "+t.name, "CREATE TABLE export."+t.name, 1)
	if _, err := tx.ExecContext(ctx, exportSQL); err != nil {
		return errors.Wrap(err, "create export table")
	}

	query := fmt.Sprintf("INSERT INTO export.%s SELECT * FROM main.%s", t.name, t.name)
	var args []any
	if t.userColumn != "" {
		query += fmt.Sprintf(` WHERE "%s" = ?`, t.userColumn)
		args = append(args, userID)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "copy rows")
	}
	return nil
}
