package database

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"catalyst-trader/internal/model"
)

const defaultFillLimit = 100

// CreateFill 写入一条模拟成交，返回自增 id
func (db *DB) CreateFill(ctx context.Context, f model.Fill) (int64, error) {
	query := `
		INSERT INTO fills (ts, symbol, side, px, qty, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id int64
	err := db.conn.QueryRowContext(ctx, query,
		f.Ts.UTC(), f.Symbol, string(f.Side),
		decimal.NewFromFloat(f.Px).Round(6).String(),
		decimal.NewFromFloat(f.Qty).Round(4).String(),
		f.Reason,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create fill: %w", err)
	}
	return id, nil
}

// ListFills 返回最近的成交，新的在前
func (db *DB) ListFills(ctx context.Context, limit int) ([]model.Fill, error) {
	if limit <= 0 {
		limit = defaultFillLimit
	}
	query := `
		SELECT ts, symbol, side, px, qty, reason
		FROM fills
		ORDER BY ts DESC, id DESC
		LIMIT $1
	`
	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fills: %w", err)
	}
	defer rows.Close()

	var fills []model.Fill
	for rows.Next() {
		var f model.Fill
		var side, px, qty string
		if err := rows.Scan(&f.Ts, &f.Symbol, &side, &px, &qty, &f.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan fill: %w", err)
		}
		f.Side = model.Side(side)
		if f.Px, err = decimalToFloat(px); err != nil {
			return nil, err
		}
		if f.Qty, err = decimalToFloat(qty); err != nil {
			return nil, err
		}
		fills = append(fills, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fills: %w", err)
	}
	return fills, nil
}

func decimalToFloat(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse decimal %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}
