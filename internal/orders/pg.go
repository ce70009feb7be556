package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/apperr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGRepo struct{ DB *pgxpool.Pool }

const pgUniqueViolation = "23505"

func (r *PGRepo) Create(ctx context.Context, o Order) (Order, error) {
	o.ID = uuid.NewString()
	o.Status = StatusPreparing

	shipTo, err := json.Marshal(o.ShipTo)
	if err != nil {
		return Order{}, err
	}
	contact, err := json.Marshal(o.Contact)
	if err != nil {
		return Order{}, err
	}

	for attempt := 0; attempt < maxNumAttempts; attempt++ {
		o.OrderNum = NewOrderNum()
		created, err := r.insert(ctx, o, shipTo, contact)
		if err == nil {
			return created, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == "orders_order_num_key" {
			continue // collision, roll a new number
		}
		return Order{}, err
	}
	return Order{}, fmt.Errorf("order number collision after %d attempts: %w", maxNumAttempts, apperr.ErrConflict)
}

func (r *PGRepo) insert(ctx context.Context, o Order, shipTo, contact []byte) (Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, user_id, order_num, status, total_cents, ship_to, contact)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		o.ID, o.UserID, o.OrderNum, o.Status, o.TotalCents, shipTo, contact).Scan(&o.CreatedAt)
	if err != nil {
		return Order{}, err
	}
	for _, l := range o.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_lines(id, order_id, product_id, size, qty, price_cents)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.NewString(), o.ID, l.ProductID, l.Size, l.Qty, l.PriceCents); err != nil {
			return Order{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.query(ctx, `WHERE user_id=$1`, []any{userID}, 0, 0)
}

func (r *PGRepo) List(ctx context.Context, f Filter) (PageResult, error) {
	if err := f.validate(); err != nil {
		return PageResult{}, err
	}
	where, args := "", []any{}
	if f.OrderNum != "" {
		where, args = `WHERE order_num=$1`, []any{f.OrderNum}
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return PageResult{}, err
	}

	page := f.page()
	out, err := r.query(ctx, where, args, PageSize, (page-1)*PageSize)
	if err != nil {
		return PageResult{}, err
	}
	return PageResult{
		Orders:      out,
		Page:        page,
		PageSize:    PageSize,
		TotalOrders: total,
		TotalPages:  (total + PageSize - 1) / PageSize,
	}, nil
}

func (r *PGRepo) query(ctx context.Context, where string, args []any, limit, offset int) ([]Order, error) {
	q := `SELECT id, user_id, order_num, status, total_cents, ship_to, contact, created_at
	      FROM orders ` + where + ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	}
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	ids := make([]string, 0)
	for rows.Next() {
		var o Order
		var shipTo, contact []byte
		if err := rows.Scan(&o.ID, &o.UserID, &o.OrderNum, &o.Status, &o.TotalCents, &shipTo, &contact, &o.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(shipTo, &o.ShipTo); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(contact, &o.Contact); err != nil {
			return nil, err
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return []Order{}, nil
	}

	lines, err := r.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Lines = lines[out[i].ID]
	}
	return out, nil
}

func (r *PGRepo) linesFor(ctx context.Context, orderIDs []string) (map[string][]Line, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT order_id, product_id, size, qty, price_cents
		FROM order_lines WHERE order_id = ANY($1)
		ORDER BY created_at`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]Line{}
	for rows.Next() {
		var orderID string
		var l Line
		if err := rows.Scan(&orderID, &l.ProductID, &l.Size, &l.Qty, &l.PriceCents); err != nil {
			return nil, err
		}
		out[orderID] = append(out[orderID], l)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateStatus(ctx context.Context, orderID string, to Status) (Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback(ctx)

	var from Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&from)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
	}
	if err != nil {
		return Order{}, err
	}
	if err := checkTransition(from, to); err != nil {
		return Order{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1`, orderID, to, time.Now().UTC()); err != nil {
		return Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}

	got, err := r.query(ctx, `WHERE id=$1`, []any{orderID}, 0, 0)
	if err != nil {
		return Order{}, err
	}
	if len(got) == 0 {
		return Order{}, fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
	}
	return got[0], nil
}
