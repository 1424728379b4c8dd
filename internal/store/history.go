// Package store provides a SQLite-backed history of generated plans.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/theirongolddev/cbudget/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when no plan matches an id.
var ErrNotFound = errors.New("store: plan not found")

// ErrAmbiguous is returned when an id prefix matches several plans.
var ErrAmbiguous = errors.New("store: id prefix matches more than one plan")

// createdLayout is fixed width so created_at sorts as text.
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

// History stores successful plans.
type History struct {
	db  *sql.DB
	now func() time.Time
}

// Record is a stored plan.
type Record struct {
	ID        string
	CreatedAt time.Time
	Plan      model.Plan
}

// Summary is one row of the history listing.
type Summary struct {
	ID          string
	CreatedAt   time.Time
	City        string
	TotalBudget float64
	Items       int
}

// Open opens or creates the history database at the given path.
func Open(dbPath string) (*History, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &History{db: db, now: time.Now}, nil
}

// Close closes the history database.
func (h *History) Close() error {
	return h.db.Close()
}

// SavePlan stores p and returns its new id.
func (h *History) SavePlan(ctx context.Context, p model.Plan) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	selected, err := json.Marshal(p.Selected)
	if err != nil {
		return "", err
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	created := h.now().UTC().Format(createdLayout)
	_, err = tx.ExecContext(ctx, `INSERT INTO plans
		(plan_id, created_at, city, total_budget, percent_basis, sum_of_amounts, plan_text, selected)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), created, p.City, p.Allocation.TotalBudget, p.Allocation.Basis.String(),
		p.Allocation.SumOfAmounts, p.Text, string(selected),
	)
	if err != nil {
		return "", fmt.Errorf("inserting plan: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO plan_items
		(plan_id, position, category, amount, percent_of_total) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer func() { _ = stmt.Close() }()

	for i, it := range p.Allocation.Items {
		if _, err := stmt.ExecContext(ctx, id.String(), i, it.Name, it.Amount, it.PercentOfTotal); err != nil {
			return "", fmt.Errorf("inserting plan item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id.String(), nil
}

// ListPlans returns the newest plans first. limit <= 0 returns all.
func (h *History) ListPlans(ctx context.Context, limit int) ([]Summary, error) {
	q := `SELECT p.plan_id, p.created_at, p.city, p.total_budget,
		(SELECT COUNT(*) FROM plan_items i WHERE i.plan_id = p.plan_id)
		FROM plans p ORDER BY p.created_at DESC, p.plan_id DESC`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Summary
	for rows.Next() {
		var s Summary
		var created string
		if err := rows.Scan(&s.ID, &created, &s.City, &s.TotalBudget, &s.Items); err != nil {
			return nil, err
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetPlan loads a plan by full id or unique id prefix.
func (h *History) GetPlan(ctx context.Context, idOrPrefix string) (Record, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return Record{}, ErrNotFound
	}

	rows, err := h.db.QueryContext(ctx, `SELECT plan_id, created_at, city, total_budget, percent_basis,
		sum_of_amounts, plan_text, selected FROM plans WHERE substr(plan_id, 1, ?) = ? LIMIT 2`,
		utf8.RuneCountInString(idOrPrefix), idOrPrefix)
	if err != nil {
		return Record{}, err
	}

	var recs []Record
	for rows.Next() {
		var r Record
		var created, basis, selected string
		if err := rows.Scan(&r.ID, &created, &r.Plan.City, &r.Plan.Allocation.TotalBudget, &basis,
			&r.Plan.Allocation.SumOfAmounts, &r.Plan.Text, &selected); err != nil {
			_ = rows.Close()
			return Record{}, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		r.Plan.Allocation.Basis, _ = model.ParsePercentBasis(basis)
		_ = json.Unmarshal([]byte(selected), &r.Plan.Selected)
		recs = append(recs, r)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return Record{}, err
	}

	switch len(recs) {
	case 0:
		return Record{}, ErrNotFound
	case 2:
		return Record{}, ErrAmbiguous
	}

	rec := recs[0]
	items, err := h.loadItems(ctx, rec.ID)
	if err != nil {
		return Record{}, err
	}
	rec.Plan.Allocation.Items = items
	return rec, nil
}

func (h *History) loadItems(ctx context.Context, id string) ([]model.DerivedItem, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT category, amount, percent_of_total
		FROM plan_items WHERE plan_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.DerivedItem
	for rows.Next() {
		var it model.DerivedItem
		if err := rows.Scan(&it.Name, &it.Amount, &it.PercentOfTotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// DeletePlan removes a plan and its items.
func (h *History) DeletePlan(ctx context.Context, id string) error {
	res, err := h.db.ExecContext(ctx, "DELETE FROM plans WHERE plan_id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// PlanCount returns the number of stored plans.
func (h *History) PlanCount(ctx context.Context) (int, error) {
	var n int
	err := h.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM plans").Scan(&n)
	return n, err
}
