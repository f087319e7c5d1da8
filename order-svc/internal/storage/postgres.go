package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"restaurant-app/order-svc/internal/domain"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func (r *PostgresRepository) CreateReceipt(ctx context.Context, receipt *domain.Receipt) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `
		INSERT INTO receipts (id, reference, session_id, message, total_amount, total_items, qr_code)
		VALUES ($1, $2, $3, $4, $5, $6, NULL)
		RETURNING created_at
	`, receipt.ID, receipt.Reference, receipt.SessionID, receipt.Message, receipt.TotalAmount, receipt.TotalItems).
		Scan(&receipt.CreatedAt); err != nil {
		return err
	}

	for _, line := range receipt.Lines {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO receipt_items (receipt_id, item_id, item_name, cuisine_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, receipt.ID, line.ItemID, line.ItemName, line.CuisineID, line.Quantity, line.Price); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) SaveQRCode(ctx context.Context, reference string, qr []byte) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE receipts SET qr_code = $1 WHERE reference = $2`, qr, reference)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrReceiptNotFound, reference)
	}
	return nil
}

func (r *PostgresRepository) GetReceipt(ctx context.Context, reference string) (*domain.Receipt, error) {
	var receipt domain.Receipt
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, reference, session_id, COALESCE(message, ''), total_amount, total_items, created_at
		FROM receipts WHERE reference = $1
	`, reference).Scan(&receipt.ID, &receipt.Reference, &receipt.SessionID, &receipt.Message,
		&receipt.TotalAmount, &receipt.TotalItems, &receipt.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrReceiptNotFound, reference)
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT item_id, item_name, COALESCE(cuisine_id, ''), quantity, price
		FROM receipt_items
		WHERE receipt_id = $1
		ORDER BY id
	`, receipt.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.ReceiptLine
		if err := rows.Scan(&line.ItemID, &line.ItemName, &line.CuisineID, &line.Quantity, &line.Price); err != nil {
			return nil, err
		}
		receipt.Lines = append(receipt.Lines, line)
	}
	return &receipt, rows.Err()
}

func (r *PostgresRepository) ListReceipts(ctx context.Context) ([]domain.Receipt, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, reference, session_id, COALESCE(message, ''), total_amount, total_items, created_at
		FROM receipts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receipts := []domain.Receipt{}
	for rows.Next() {
		var receipt domain.Receipt
		if err := rows.Scan(&receipt.ID, &receipt.Reference, &receipt.SessionID, &receipt.Message,
			&receipt.TotalAmount, &receipt.TotalItems, &receipt.CreatedAt); err != nil {
			continue
		}
		receipts = append(receipts, receipt)
	}
	return receipts, rows.Err()
}

func (r *PostgresRepository) GetQRCode(ctx context.Context, reference string) ([]byte, error) {
	var qrCode []byte
	err := r.DB.QueryRowContext(ctx, "SELECT qr_code FROM receipts WHERE reference = $1", reference).Scan(&qrCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrReceiptNotFound, reference)
	}
	if err != nil {
		return nil, err
	}
	return qrCode, nil
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS receipts (
			id TEXT PRIMARY KEY,
			reference TEXT NOT NULL UNIQUE,
			session_id TEXT NOT NULL,
			message TEXT,
			total_amount NUMERIC(12, 2) NOT NULL,
			total_items INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS receipt_items (
			id SERIAL PRIMARY KEY,
			receipt_id TEXT NOT NULL REFERENCES receipts(id) ON DELETE CASCADE,
			item_id TEXT NOT NULL,
			item_name TEXT NOT NULL,
			cuisine_id TEXT,
			quantity INTEGER NOT NULL,
			price NUMERIC(12, 2) NOT NULL
		)`,
		"ALTER TABLE IF EXISTS receipts ADD COLUMN IF NOT EXISTS qr_code BYTEA",
	}
	for _, stmt := range statements {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
		}
	}
	return nil
}
