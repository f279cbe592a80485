package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/nyota-loans/ms-go-payments/app/entity"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPaymentAlreadyExists = errors.New("payment already exists")
	ErrPaymentFinalized     = errors.New("payment already finalized")
)

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (
			external_reference, user_id, loan_application_id,
			amount, phone_number, provider,
			checkout_request_id, status,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		payment.ExternalReference,
		payment.UserID,
		nullableStringValue(payment.LoanApplicationID),
		payment.Amount,
		payment.PhoneNumber,
		payment.Provider,
		nullableStringValue(payment.CheckoutRequestID),
		payment.Status,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrPaymentAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	payment.ID = uint64(id)
	return nil
}

func (r *PaymentRepository) FindByExternalReference(ctx context.Context, externalReference string) (*entity.Payment, error) {
	query := `
		SELECT id, external_reference, user_id, loan_application_id,
			amount, phone_number, provider,
			checkout_request_id, status,
			created_at, updated_at
		FROM payments
		WHERE external_reference = ?
		LIMIT 1
	`

	payment := &entity.Payment{}
	if err := scanPayment(r.db.QueryRowContext(ctx, query, externalReference), payment); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return payment, nil
}

// Finalize moves a pending payment to a terminal status. The transition is
// guarded: a payment that already reached a terminal status is left untouched
// and ErrPaymentFinalized is returned, so duplicate or out-of-order gateway
// deliveries can never overwrite a settled result.
func (r *PaymentRepository) Finalize(ctx context.Context, externalReference, newStatus string, checkoutRequestID *string, now time.Time) error {
	query := `
		UPDATE payments SET
			status = ?,
			checkout_request_id = COALESCE(?, checkout_request_id),
			updated_at = ?
		WHERE external_reference = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		newStatus,
		nullableStringValue(checkoutRequestID),
		now,
		externalReference,
		entity.PaymentStatusPending,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	existing, err := r.FindByExternalReference(ctx, externalReference)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrPaymentNotFound
	}
	return ErrPaymentFinalized
}

func (r *PaymentRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.Payment, error) {
	query := `
		SELECT id, external_reference, user_id, loan_application_id,
			amount, phone_number, provider,
			checkout_request_id, status,
			created_at, updated_at
		FROM payments
		WHERE status = ?
		  AND created_at <= ?
		ORDER BY created_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, entity.PaymentStatusPending, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*entity.Payment, 0)
	for rows.Next() {
		item := &entity.Payment{}
		if err := scanPayment(rows, item); err != nil {
			return nil, err
		}
		payments = append(payments, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(scan rowScanner, payment *entity.Payment) error {
	var loanApplicationID sql.NullString
	var checkoutRequestID sql.NullString

	err := scan.Scan(
		&payment.ID,
		&payment.ExternalReference,
		&payment.UserID,
		&loanApplicationID,
		&payment.Amount,
		&payment.PhoneNumber,
		&payment.Provider,
		&checkoutRequestID,
		&payment.Status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return err
	}

	payment.LoanApplicationID = stringPtrFromNull(loanApplicationID)
	payment.CheckoutRequestID = stringPtrFromNull(checkoutRequestID)

	return nil
}
