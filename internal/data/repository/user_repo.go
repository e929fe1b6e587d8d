package repository

import (
	"context"
	"errors"
	"fmt"

	"artisan-marketplace/internal/data/entity"
	"artisan-marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// CreateWithArtisan stores an artisan-role user together with its profile and skills.
	CreateWithArtisan(ctx context.Context, user *entity.User, artisan *entity.Artisan) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

const insertUserSQL = `
	INSERT INTO users (id, email, password, role, full_name, business_name,
	                   is_active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

func userArgs(user *entity.User) []any {
	return []any{
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.FullName,
		user.BusinessName,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if _, err := r.db.Exec(ctx, insertUserSQL, userArgs(user)...); err != nil {
		if database.IsUniqueViolation(err, usersEmailKey) {
			return ErrEmailTaken
		}
		r.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
		)
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}

	return nil
}

func (r *userRepository) CreateWithArtisan(ctx context.Context, user *entity.User, artisan *entity.Artisan) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin register tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, insertUserSQL, userArgs(user)...); err != nil {
		if database.IsUniqueViolation(err, usersEmailKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}

	if err = insertArtisan(ctx, tx, artisan); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit artisan registration",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
		)
		return fmt.Errorf("commit register tx: %w", err)
	}

	return nil
}

const selectUserSQL = `
	SELECT id, email, password, role, full_name, business_name,
	       is_active, created_at, updated_at
	FROM users
`

func scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.FullName,
		&user.BusinessName,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, selectUserSQL+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find user by ID",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return nil, fmt.Errorf("find user by ID %s: %w", id.String(), err)
	}

	return user, nil
}

// FindByEmail matches case-insensitively, the same way the unique index does.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, selectUserSQL+` WHERE LOWER(email) = LOWER($1)`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find user by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find user by email %s: %w", email, err)
	}

	return user, nil
}
