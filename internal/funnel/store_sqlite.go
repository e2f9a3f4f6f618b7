package funnel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/radarfiscal/radar/internal/catalog"
	"github.com/radarfiscal/radar/internal/payment"
)

const timeLayout = time.RFC3339Nano

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) CreateSession(ctx context.Context, id string, createdAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, created_at, payment_status) VALUES (?, ?, 0)
	`, id, formatTime(createdAt))
	return err
}

const sessionColumns = `
	s.id, s.created_at, s.payment_status, s.email, s.provider_ref, s.provider_status,
	s.paid_at, s.qr_code, s.qr_code_base64, s.qr_expires_at,
	(SELECT COUNT(*) FROM answers a WHERE a.session_id = s.id)
`

func (s *SQLiteStore) SessionByID(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions s WHERE s.id = ?`, id)
	return scanSession(row)
}

func (s *SQLiteStore) SessionByProviderRef(ctx context.Context, ref string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions s WHERE s.provider_ref = ?`, ref)
	return scanSession(row)
}

func scanSession(row *sql.Row) (Session, error) {
	var sess Session
	var createdAt string
	var paid int
	var email, ref, status, paidAt sql.NullString
	var qrCode, qrCodeBase64, qrExpires sql.NullString
	err := row.Scan(&sess.ID, &createdAt, &paid, &email, &ref, &status,
		&paidAt, &qrCode, &qrCodeBase64, &qrExpires, &sess.Answered)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}

	sess.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	sess.Paid = paid == 1
	sess.Email = email.String
	sess.ProviderRef = ref.String
	sess.ProviderStatus = status.String
	sess.PaidAt = parseNullTime(paidAt)
	if qrCode.Valid {
		sess.PaymentCode = &payment.Code{
			QRCode:       qrCode.String,
			QRCodeBase64: qrCodeBase64.String,
			ExpiresAt:    parseNullTime(qrExpires),
		}
	}
	return sess, nil
}

func (s *SQLiteStore) UpsertAnswer(ctx context.Context, sessionID, questionID string, a catalog.Answer, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO answers (session_id, question_id, answer_label, weight, answered_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (session_id, question_id) DO UPDATE SET
			answer_label = excluded.answer_label,
			weight = excluded.weight,
			answered_at = excluded.answered_at
	`, sessionID, questionID, a.Label, a.Weight, formatTime(at))
	return err
}

func (s *SQLiteStore) Answers(ctx context.Context, sessionID string) (catalog.Answers, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT question_id, answer_label, weight FROM answers WHERE session_id = ?
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := make(catalog.Answers)
	for rows.Next() {
		var id string
		var a catalog.Answer
		if err := rows.Scan(&id, &a.Label, &a.Weight); err != nil {
			return nil, err
		}
		answers[id] = a
	}
	return answers, rows.Err()
}

func (s *SQLiteStore) SaveCheckout(ctx context.Context, sessionID, email string, co payment.Checkout) error {
	var expires any
	if co.Code.ExpiresAt != nil {
		expires = formatTime(*co.Code.ExpiresAt)
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET email = ?, provider_ref = ?, provider_status = ?,
			qr_code = ?, qr_code_base64 = ?, qr_expires_at = ?
		WHERE id = ? AND payment_status = 0
	`, email, co.ProviderRef, co.Status, co.Code.QRCode, co.Code.QRCodeBase64, expires, sessionID)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return s.missOrPaid(ctx, sessionID)
	}
	return nil
}

func (s *SQLiteStore) MarkPaid(ctx context.Context, sessionID, providerRef, providerStatus string, at time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET payment_status = 1, paid_at = ?,
			provider_ref = COALESCE(NULLIF(?, ''), provider_ref),
			provider_status = COALESCE(NULLIF(?, ''), provider_status)
		WHERE id = ? AND payment_status = 0
	`, formatTime(at), providerRef, providerStatus, sessionID)
	if err != nil {
		return false, err
	}
	n, _ := result.RowsAffected()
	if n == 1 {
		return true, nil
	}
	if err := s.missOrPaid(ctx, sessionID); !errors.Is(err, ErrAlreadyPaid) {
		return false, err
	}
	return false, nil
}

func (s *SQLiteStore) SetProviderStatus(ctx context.Context, sessionID, providerStatus string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET provider_status = ? WHERE id = ? AND payment_status = 0
	`, providerStatus, sessionID)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		if err := s.missOrPaid(ctx, sessionID); !errors.Is(err, ErrAlreadyPaid) {
			return err
		}
	}
	return nil
}

// missOrPaid explains a conditional update that touched no row.
func (s *SQLiteStore) missOrPaid(ctx context.Context, sessionID string) error {
	var paid int
	err := s.db.QueryRowContext(ctx, `SELECT payment_status FROM sessions WHERE id = ?`, sessionID).Scan(&paid)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading session %s: %w", sessionID, err)
	}
	if paid == 1 {
		return ErrAlreadyPaid
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, err := time.Parse(timeLayout, v.String)
	if err != nil {
		return nil
	}
	return &t
}
