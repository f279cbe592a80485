package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/nyota-loans/ms-go-payments/app/entity"
)

var (
	ErrLoanApplicationNotFound      = errors.New("loan application not found")
	ErrLoanApplicationAlreadyExists = errors.New("loan application already exists")
)

type LoanApplicationRepository struct {
	db DBTX
}

func NewLoanApplicationRepository(db DBTX) *LoanApplicationRepository {
	return &LoanApplicationRepository{db: db}
}

func (r *LoanApplicationRepository) Create(ctx context.Context, application *entity.LoanApplication) error {
	query := `
		INSERT INTO loan_applications (
			id, user_id, full_name, phone_number, amount, purpose,
			status, payment_verified, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		application.ID,
		application.UserID,
		application.FullName,
		application.PhoneNumber,
		application.Amount,
		application.Purpose,
		application.Status,
		application.PaymentVerified,
		application.CreatedAt,
		application.UpdatedAt,
	)
	if err != nil && isDuplicateEntryError(err) {
		return ErrLoanApplicationAlreadyExists
	}
	return err
}

func (r *LoanApplicationRepository) FindByID(ctx context.Context, id string) (*entity.LoanApplication, error) {
	query := `
		SELECT id, user_id, full_name, phone_number, amount, purpose,
			status, payment_verified, created_at, updated_at
		FROM loan_applications
		WHERE id = ?
		LIMIT 1
	`

	application := &entity.LoanApplication{}
	if err := scanLoanApplication(r.db.QueryRowContext(ctx, query, id), application); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return application, nil
}

func (r *LoanApplicationRepository) ListByUser(ctx context.Context, userID string, limit int32) ([]*entity.LoanApplication, error) {
	query := `
		SELECT id, user_id, full_name, phone_number, amount, purpose,
			status, payment_verified, created_at, updated_at
		FROM loan_applications
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applications := make([]*entity.LoanApplication, 0)
	for rows.Next() {
		item := &entity.LoanApplication{}
		if err := scanLoanApplication(rows, item); err != nil {
			return nil, err
		}
		applications = append(applications, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return applications, nil
}

// MarkPaymentVerified is monotonic: it only ever flips the flag to true.
func (r *LoanApplicationRepository) MarkPaymentVerified(ctx context.Context, id string, now time.Time) error {
	query := `
		UPDATE loan_applications SET
			payment_verified = TRUE,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, now, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		existing, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrLoanApplicationNotFound
		}
	}

	return nil
}

func scanLoanApplication(scan rowScanner, application *entity.LoanApplication) error {
	return scan.Scan(
		&application.ID,
		&application.UserID,
		&application.FullName,
		&application.PhoneNumber,
		&application.Amount,
		&application.Purpose,
		&application.Status,
		&application.PaymentVerified,
		&application.CreatedAt,
		&application.UpdatedAt,
	)
}
