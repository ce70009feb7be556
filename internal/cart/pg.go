package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront.git/internal/apperr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGStore struct{ DB *pgxpool.Pool }

func (s *PGStore) AddLine(ctx context.Context, userID, productID, size string, qty int) (Cart, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Cart{}, err
	}
	defer tx.Rollback(ctx)

	// lazy cart creation; the no-op update makes RETURNING work on conflict
	var cartID string
	err = tx.QueryRow(ctx, `
		INSERT INTO carts(id, user_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id`, uuid.NewString(), userID).Scan(&cartID)
	if err != nil {
		return Cart{}, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO cart_lines(id, cart_id, product_id, size, qty)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cart_id, product_id, size)
		DO UPDATE SET qty = cart_lines.qty + EXCLUDED.qty`,
		uuid.NewString(), cartID, productID, size, qty)
	if err != nil {
		return Cart{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Cart{}, err
	}
	return s.Get(ctx, userID)
}

func (s *PGStore) Get(ctx context.Context, userID string) (Cart, error) {
	c := Cart{UserID: userID}
	err := s.DB.QueryRow(ctx, `SELECT id FROM carts WHERE user_id=$1`, userID).Scan(&c.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return c, nil // lazily created carts: none yet means empty
	}
	if err != nil {
		return Cart{}, err
	}

	rows, err := s.DB.Query(ctx, `
		SELECT id, product_id, size, qty FROM cart_lines
		WHERE cart_id=$1 ORDER BY created_at`, c.ID)
	if err != nil {
		return Cart{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Size, &l.Qty); err != nil {
			return Cart{}, err
		}
		c.Lines = append(c.Lines, l)
	}
	return c, rows.Err()
}

func (s *PGStore) SetLineQty(ctx context.Context, userID, lineID string, qty int) (Cart, error) {
	ct, err := s.DB.Exec(ctx, `
		UPDATE cart_lines SET qty=$3
		WHERE id=$2 AND cart_id=(SELECT id FROM carts WHERE user_id=$1)`,
		userID, lineID, qty)
	if err != nil {
		return Cart{}, err
	}
	if ct.RowsAffected() != 1 {
		return Cart{}, fmt.Errorf("cart line %s: %w", lineID, apperr.ErrNotFound)
	}
	return s.Get(ctx, userID)
}

func (s *PGStore) RemoveLine(ctx context.Context, userID, lineID string) (Cart, error) {
	ct, err := s.DB.Exec(ctx, `
		DELETE FROM cart_lines
		WHERE id=$2 AND cart_id=(SELECT id FROM carts WHERE user_id=$1)`,
		userID, lineID)
	if err != nil {
		return Cart{}, err
	}
	if ct.RowsAffected() != 1 {
		return Cart{}, fmt.Errorf("cart line %s: %w", lineID, apperr.ErrNotFound)
	}
	return s.Get(ctx, userID)
}

func (s *PGStore) Clear(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, `
		DELETE FROM cart_lines
		WHERE cart_id=(SELECT id FROM carts WHERE user_id=$1)`, userID)
	return err
}

func (s *PGStore) LineCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM cart_lines
		WHERE cart_id=(SELECT id FROM carts WHERE user_id=$1)`, userID).Scan(&n)
	return n, err
}
