package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/models"
)

func (r *SQLRepo) CreateOperator(ctx context.Context, o *models.Operator) (int64, error) {
	if o == nil {
		return 0, fmt.Errorf("operator is nil")
	}

	var id int64
	err := r.conn.QueryRow(ctx, `INSERT INTO operators (name, email, password_hash) VALUES (?, ?, ?) RETURNING id`,
		o.Name, strings.ToLower(strings.TrimSpace(o.Email)), o.PasswordHash).Scan(&id)
	if err != nil {
		return 0, wrap("create operator", err)
	}
	return id, nil
}

func (r *SQLRepo) GetOperatorByEmail(ctx context.Context, email string) (*models.Operator, error) {
	var o models.Operator
	err := r.conn.QueryRow(ctx, `SELECT id, name, email, password_hash, created_at FROM operators WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))).Scan(&o.ID, &o.Name, &o.Email, &o.PasswordHash, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get operator", err)
	}
	return &o, nil
}
