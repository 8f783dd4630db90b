package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/minerva/internal/database"
	"github.com/BradenHooton/minerva/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentRepository struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	query := `
		SELECT id, user_id, amount, paid_at, description
		FROM payments
		WHERE user_id = $1
		ORDER BY paid_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := make([]*models.Payment, 0)
	for rows.Next() {
		var p models.Payment
		var amount string
		if err := rows.Scan(&p.ID, &p.UserID, &amount, &p.PaidAt, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount in payment %s: %w", p.ID, err)
		}
		payments = append(payments, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return payments, nil
}

func (r *PaymentRepository) Create(ctx context.Context, userID string, amount decimal.Decimal, paidAt time.Time, description string) (*models.Payment, error) {
	payment := &models.Payment{
		ID:          uuid.New().String(),
		UserID:      userID,
		Amount:      amount,
		PaidAt:      paidAt,
		Description: description,
	}

	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO payments (id, user_id, amount, paid_at, description)
		VALUES ($1, $2, $3, $4, $5)
	`, payment.ID, payment.UserID, payment.Amount.String(), payment.PaidAt, payment.Description)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return payment, nil
}
