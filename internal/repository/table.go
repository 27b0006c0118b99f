package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/campus-admin-console/internal/models"
)

// Notifier is told about every confirmed write.
type Notifier interface {
	Notify(ctx context.Context, table string)
}

// TableSpec describes the writable shape of a table. Every table also has the
// store-assigned id and created_at columns.
type TableSpec struct {
	Name    string
	Columns []string
	// Sortable lists the columns List may order by besides created_at.
	Sortable []string
	// ForeignKeys lists the columns DeleteWhere may filter on.
	ForeignKeys []string
}

// Table is a row store over one table. D carries db tags for every column in
// the spec; T additionally maps id and created_at.
type Table[T any, D any] struct {
	db       *sqlx.DB
	spec     TableSpec
	notifier Notifier
	table    string
	columns  string
}

// NewTable builds a row store. notifier may be nil.
func NewTable[T any, D any](db *sqlx.DB, spec TableSpec, notifier Notifier) *Table[T, D] {
	return &Table[T, D]{
		db:       db,
		spec:     spec,
		notifier: notifier,
		table:    pq.QuoteIdentifier(spec.Name),
		columns:  strings.Join(append([]string{"id", "created_at"}, spec.Columns...), ", "),
	}
}

// Name returns the table name.
func (t *Table[T, D]) Name() string { return t.spec.Name }

// List returns every row in the requested order. Unknown columns fall back to
// created_at descending.
func (t *Table[T, D]) List(ctx context.Context, order models.Order) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", t.columns, t.table, t.orderBy(order))
	rows := []T{}
	if err := t.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list %s: %w", t.spec.Name, err)
	}
	return rows, nil
}

// Get returns the row with id. A missing row is reported as sql.ErrNoRows.
func (t *Table[T, D]) Get(ctx context.Context, id string) (T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", t.columns, t.table)
	var row T
	if err := t.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return row, err
		}
		return row, fmt.Errorf("get %s: %w", t.spec.Name, err)
	}
	return row, nil
}

// Insert stores the draft under a new id and returns the persisted row.
func (t *Table[T, D]) Insert(ctx context.Context, draft D) (T, error) {
	var row T
	args, err := t.args(draft)
	if err != nil {
		return row, err
	}
	args["id"] = uuid.NewString()

	named := fmt.Sprintf("INSERT INTO %s (id, %s) VALUES (:id, %s) RETURNING %s",
		t.table, strings.Join(t.spec.Columns, ", "), placeholders(t.spec.Columns), t.columns)
	query, values, err := sqlx.Named(named, args)
	if err != nil {
		return row, fmt.Errorf("bind insert %s: %w", t.spec.Name, err)
	}
	if err := t.db.GetContext(ctx, &row, t.db.Rebind(query), values...); err != nil {
		return row, fmt.Errorf("insert %s: %w", t.spec.Name, err)
	}
	t.notify(ctx)
	return row, nil
}

// InsertMany stores every draft in one statement.
func (t *Table[T, D]) InsertMany(ctx context.Context, drafts []D) ([]T, error) {
	rows := []T{}
	if len(drafts) == 0 {
		return rows, nil
	}

	width := len(t.spec.Columns) + 1
	tuples := make([]string, 0, len(drafts))
	values := make([]interface{}, 0, len(drafts)*width)
	for _, draft := range drafts {
		args, err := t.args(draft)
		if err != nil {
			return nil, err
		}
		values = append(values, uuid.NewString())
		for _, col := range t.spec.Columns {
			values = append(values, args[col])
		}
		tuples = append(tuples, "("+strings.TrimSuffix(strings.Repeat("?, ", width), ", ")+")")
	}

	query := fmt.Sprintf("INSERT INTO %s (id, %s) VALUES %s RETURNING %s",
		t.table, strings.Join(t.spec.Columns, ", "), strings.Join(tuples, ", "), t.columns)
	if err := t.db.SelectContext(ctx, &rows, t.db.Rebind(query), values...); err != nil {
		return nil, fmt.Errorf("insert many %s: %w", t.spec.Name, err)
	}
	t.notify(ctx)
	return rows, nil
}

// Update overwrites the writable columns of id and returns the persisted row.
func (t *Table[T, D]) Update(ctx context.Context, id string, draft D) (T, error) {
	var row T
	args, err := t.args(draft)
	if err != nil {
		return row, err
	}
	args["id"] = id

	sets := make([]string, len(t.spec.Columns))
	for i, col := range t.spec.Columns {
		sets[i] = col + " = :" + col
	}
	named := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id RETURNING %s", t.table, strings.Join(sets, ", "), t.columns)
	query, values, err := sqlx.Named(named, args)
	if err != nil {
		return row, fmt.Errorf("bind update %s: %w", t.spec.Name, err)
	}
	if err := t.db.GetContext(ctx, &row, t.db.Rebind(query), values...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return row, err
		}
		return row, fmt.Errorf("update %s: %w", t.spec.Name, err)
	}
	t.notify(ctx)
	return row, nil
}

// Delete removes the row with id. Deleting a missing row is not an error.
func (t *Table[T, D]) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.table)
	if _, err := t.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete %s: %w", t.spec.Name, err)
	}
	t.notify(ctx)
	return nil
}

// DeleteWhere removes every row whose foreign key column equals value.
func (t *Table[T, D]) DeleteWhere(ctx context.Context, column, value string) error {
	if !contains(t.spec.ForeignKeys, column) {
		return fmt.Errorf("delete %s: column %q is not a foreign key", t.spec.Name, column)
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", t.table, pq.QuoteIdentifier(column))
	if _, err := t.db.ExecContext(ctx, query, value); err != nil {
		return fmt.Errorf("delete %s by %s: %w", t.spec.Name, column, err)
	}
	t.notify(ctx)
	return nil
}

func (t *Table[T, D]) orderBy(order models.Order) string {
	col := order.Column
	if col != "created_at" && !contains(t.spec.Sortable, col) {
		return "created_at DESC"
	}
	if order.Ascending {
		return col + " ASC"
	}
	return col + " DESC"
}

func (t *Table[T, D]) args(draft D) (map[string]interface{}, error) {
	fields := t.db.Mapper.FieldMap(reflect.ValueOf(draft))
	out := make(map[string]interface{}, len(t.spec.Columns)+1)
	for _, col := range t.spec.Columns {
		v, ok := fields[col]
		if !ok {
			return nil, fmt.Errorf("%s: draft has no field for column %q", t.spec.Name, col)
		}
		out[col] = v.Interface()
	}
	return out, nil
}

func (t *Table[T, D]) notify(ctx context.Context) {
	if t.notifier != nil {
		t.notifier.Notify(ctx, t.spec.Name)
	}
}

func placeholders(cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = ":" + c
	}
	return strings.Join(out, ", ")
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
