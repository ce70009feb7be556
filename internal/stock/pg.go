package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront.git/internal/apperr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGLedger keeps the counters in product_stock. The whole batch runs in one
// transaction: each row is locked FOR UPDATE, then decremented with a
// conditional update whose rows-affected is verified, so check+decrement
// cannot race with another batch on the same key.
type PGLedger struct{ DB *pgxpool.Pool }

func (l *PGLedger) TryDeduct(ctx context.Context, productID, size string, qty int) error {
	return l.TryDeductAll(ctx, []Line{{ProductID: productID, Size: size, Qty: qty}})
}

func (l *PGLedger) TryDeductAll(ctx context.Context, lines []Line) error {
	if err := validateLines(lines); err != nil {
		return err
	}

	tx, err := l.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var shortfalls []Shortfall

	for _, it := range lines {
		var available int
		var name string
		err := tx.QueryRow(ctx, `
			SELECT ps.qty, p.name
			FROM product_stock ps
			JOIN products p ON p.id = ps.product_id
			WHERE ps.product_id=$1 AND ps.size=$2
			FOR UPDATE OF ps`, it.ProductID, it.Size).Scan(&available, &name)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("product %s size %s: %w", it.ProductID, it.Size, apperr.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if available < it.Qty {
			shortfalls = append(shortfalls, Shortfall{
				ProductID: it.ProductID, Name: name, Size: it.Size,
				Requested: it.Qty, Available: available,
			})
			continue
		}

		ct, err := tx.Exec(ctx, `
			UPDATE product_stock SET qty = qty - $3
			WHERE product_id=$1 AND size=$2 AND qty >= $3`, it.ProductID, it.Size, it.Qty)
		if err != nil {
			return err
		}
		if ct.RowsAffected() != 1 {
			shortfalls = append(shortfalls, Shortfall{
				ProductID: it.ProductID, Name: name, Size: it.Size,
				Requested: it.Qty, Available: available,
			})
		}
	}

	if len(shortfalls) > 0 {
		return &InsufficientError{Shortfalls: shortfalls} // rollback via defer
	}
	return tx.Commit(ctx)
}

func (l *PGLedger) Increase(ctx context.Context, productID, size string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("qty must be >= 1: %w", apperr.ErrInvalid)
	}
	ct, err := l.DB.Exec(ctx, `
		UPDATE product_stock SET qty = qty + $3
		WHERE product_id=$1 AND size=$2`, productID, size, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("product %s size %s: %w", productID, size, apperr.ErrNotFound)
	}
	return nil
}
