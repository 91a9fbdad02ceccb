package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jhedenpat/kapekiosk-v1-0/internal/models"
)

// CreateMember inserts a new member into the database.
func (s *SQLiteStore) CreateMember(ctx context.Context, member *models.Member) error {
	query := `
		INSERT INTO members (id, phone, display_name, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		member.ID,
		member.Phone,
		member.DisplayName,
		member.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

// MemberByPhone retrieves a member by mobile number.
func (s *SQLiteStore) MemberByPhone(ctx context.Context, phone string) (*models.Member, error) {
	query := `
		SELECT id, phone, display_name, created_at
		FROM members
		WHERE phone = ?
	`

	member := &models.Member{}
	err := s.db.QueryRowContext(ctx, query, phone).Scan(
		&member.ID,
		&member.Phone,
		&member.DisplayName,
		&member.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Member not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member by phone: %w", err)
	}

	return member, nil
}
