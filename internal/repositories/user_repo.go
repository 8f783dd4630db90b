package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/minerva/internal/database"
	"github.com/BradenHooton/minerva/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

var roleIDs = map[string]int{
	models.RoleAdmin:  1,
	models.RoleMember: 2,
}

// Create inserts a user, their role assignment, and an empty profile row
// in a single transaction.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash, role string) (*models.User, error) {
	roleID, ok := roleIDs[role]
	if !ok {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, username, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, user.ID, user.Username, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
		`, user.ID, roleID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO profiles (user_id) VALUES ($1)
		`, user.ID)
		return err
	})
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT u.id, u.username, u.password_hash, r.role_name, u.created_at, u.updated_at
		FROM users u
		JOIN user_roles ur ON u.id = ur.user_id
		JOIN roles r ON ur.role_id = r.id
		WHERE u.username = $1
	`

	var user models.User
	err := r.db.Pool.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Role,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT u.id, u.username, u.password_hash, r.role_name, u.created_at, u.updated_at
		FROM users u
		JOIN user_roles ur ON u.id = ur.user_id
		JOIN roles r ON ur.role_id = r.id
		WHERE u.id = $1
	`

	var user models.User
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Role,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

const accountColumns = `
	u.id, u.username,
	p.first_name, p.last_name, p.email, p.phone, p.website, p.bio,
	r.role_name
`

func scanAccount(row pgx.Row) (*models.UserAccount, error) {
	var acct models.UserAccount
	err := row.Scan(
		&acct.ID, &acct.Username,
		&acct.FirstName, &acct.LastName, &acct.Email, &acct.Phone, &acct.Website, &acct.Bio,
		&acct.Role,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &acct, nil
}

// GetAccount returns the joined user + profile + role row for one user.
func (r *UserRepository) GetAccount(ctx context.Context, id string) (*models.UserAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM users u
		JOIN profiles p ON u.id = p.user_id
		JOIN user_roles ur ON u.id = ur.user_id
		JOIN roles r ON ur.role_id = r.id
		WHERE u.id = $1
	`

	return scanAccount(r.db.Pool.QueryRow(ctx, query, id))
}

// ListAccounts returns all users with their profiles and roles.
func (r *UserRepository) ListAccounts(ctx context.Context) ([]*models.UserAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM users u
		JOIN profiles p ON u.id = p.user_id
		JOIN user_roles ur ON u.id = ur.user_id
		JOIN roles r ON ur.role_id = r.id
		ORDER BY u.created_at
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]*models.UserAccount, 0)
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return accounts, nil
}

// UpdateProfile updates the username and the profile fields in one
// transaction. Both statements are parameterized.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID, username string, profile *models.Profile) error {
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE users SET username = $1, updated_at = NOW() WHERE id = $2
		`, username, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return models.ErrNotFound
		}

		_, err = tx.Exec(ctx, `
			UPDATE profiles
			SET first_name = $1, last_name = $2, email = $3, phone = $4, website = $5, bio = $6
			WHERE user_id = $7
		`, profile.FirstName, profile.LastName, profile.Email, profile.Phone, profile.Website, profile.Bio, userID)
		return err
	})

	return database.MapPostgresError(err)
}
