package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"artisan-marketplace/internal/data/entity"
	"artisan-marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ArtisanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Artisan, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Artisan, error)
	// FindByName returns every artisan whose name equals name ignoring case.
	FindByName(ctx context.Context, name string) ([]*entity.Artisan, error)
	List(ctx context.Context, filter entity.ArtisanFilter) ([]*entity.Artisan, error)
}

type artisanRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewArtisanRepository(db database.PgxIface, log *zap.Logger) ArtisanRepository {
	return &artisanRepository{
		db:  db,
		log: log.With(zap.String("repository", "artisan")),
	}
}

const selectArtisanSQL = `
	SELECT a.id, a.user_id, a.name, a.category, a.location, a.rating,
	       a.is_available, a.created_at, a.updated_at
	FROM artisans a
`

func scanArtisan(row pgx.Row) (*entity.Artisan, error) {
	var a entity.Artisan
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Name,
		&a.Category,
		&a.Location,
		&a.Rating,
		&a.IsAvailable,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// insertArtisan writes the profile and its skill links inside an open transaction.
func insertArtisan(ctx context.Context, tx pgx.Tx, a *entity.Artisan) error {
	query := `
		INSERT INTO artisans (id, user_id, name, category, location, rating,
		                      is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.Exec(ctx, query,
		a.ID,
		a.UserID,
		a.Name,
		a.Category,
		a.Location,
		a.Rating,
		a.IsAvailable,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create artisan %s: %w", a.Name, err)
	}

	for _, s := range a.Skills {
		if _, err := tx.Exec(ctx,
			`INSERT INTO artisan_skills (artisan_id, skill_id) VALUES ($1, $2)`,
			a.ID, s.ID,
		); err != nil {
			return fmt.Errorf("link skill %s to artisan %s: %w", s.Name, a.ID.String(), err)
		}
	}

	return nil
}

func (r *artisanRepository) findOne(ctx context.Context, where string, arg any) (*entity.Artisan, error) {
	a, err := scanArtisan(r.db.QueryRow(ctx, selectArtisanSQL+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := r.attachSkills(ctx, []*entity.Artisan{a}); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *artisanRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Artisan, error) {
	a, err := r.findOne(ctx, ` WHERE a.id = $1`, id)
	if err != nil {
		r.log.Error("Failed to find artisan by ID",
			zap.Error(err),
			zap.String("artisan_id", id.String()),
		)
		return nil, fmt.Errorf("find artisan by ID %s: %w", id.String(), err)
	}
	return a, nil
}

func (r *artisanRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Artisan, error) {
	a, err := r.findOne(ctx, ` WHERE a.user_id = $1`, userID)
	if err != nil {
		r.log.Error("Failed to find artisan by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find artisan by user ID %s: %w", userID.String(), err)
	}
	return a, nil
}

func (r *artisanRepository) FindByName(ctx context.Context, name string) ([]*entity.Artisan, error) {
	query := selectArtisanSQL + ` WHERE LOWER(a.name) = LOWER($1) ORDER BY a.created_at, a.id`

	artisans, err := r.queryArtisans(ctx, query, strings.TrimSpace(name))
	if err != nil {
		r.log.Error("Failed to find artisans by name",
			zap.Error(err),
			zap.String("name", name),
		)
		return nil, fmt.Errorf("find artisans by name %q: %w", name, err)
	}
	return artisans, nil
}

func (r *artisanRepository) List(ctx context.Context, filter entity.ArtisanFilter) ([]*entity.Artisan, error) {
	query, args := buildArtisanListQuery(filter)

	artisans, err := r.queryArtisans(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list artisans", zap.Error(err), zap.Int("filter_args", len(args)))
		return nil, fmt.Errorf("list artisans: %w", err)
	}
	return artisans, nil
}

// buildArtisanListQuery ANDs together every filter that is set.
func buildArtisanListQuery(filter entity.ArtisanFilter) (string, []any) {
	var qb strings.Builder
	qb.WriteString(selectArtisanSQL)
	qb.WriteString(" WHERE TRUE")

	args := []any{}
	next := func(v any) int {
		args = append(args, v)
		return len(args)
	}

	if filter.Category != nil {
		fmt.Fprintf(&qb, " AND a.category = $%d", next(*filter.Category))
	}

	if filter.IsAvailable != nil {
		fmt.Fprintf(&qb, " AND a.is_available = $%d", next(*filter.IsAvailable))
	}

	if filter.TopRated {
		fmt.Fprintf(&qb, " AND a.rating >= $%d", next(entity.TopRatingThreshold))
	}

	if filter.Search != nil && *filter.Search != "" {
		n := next(likePattern(*filter.Search))
		fmt.Fprintf(&qb, " AND (a.name ILIKE $%d OR a.location ILIKE $%d)", n, n)
	}

	if filter.Skill != nil && *filter.Skill != "" {
		fmt.Fprintf(&qb, `
		AND EXISTS (
			SELECT 1 FROM artisan_skills ask
			JOIN skills sk ON sk.id = ask.skill_id
			WHERE ask.artisan_id = a.id AND sk.name ILIKE $%d
		)`, next(likePattern(*filter.Skill)))
	}

	if filter.Booked != nil {
		op := "EXISTS"
		if !*filter.Booked {
			op = "NOT EXISTS"
		}
		fmt.Fprintf(&qb, `
		AND %s (
			SELECT 1 FROM bookings b
			WHERE b.artisan_id = a.id AND b.status = ANY($%d::text[])
		)`, op, next(entity.ActiveBookingStatuses))
	}

	qb.WriteString(" ORDER BY a.name, a.id")
	return qb.String(), args
}

// likePattern wraps s for a substring ILIKE, escaping the LIKE wildcards it contains.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func (r *artisanRepository) queryArtisans(ctx context.Context, query string, args ...any) ([]*entity.Artisan, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	artisans := []*entity.Artisan{}
	for rows.Next() {
		a, err := scanArtisan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artisan row: %w", err)
		}
		artisans = append(artisans, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artisan rows: %w", err)
	}
	rows.Close()

	if err := r.attachSkills(ctx, artisans); err != nil {
		return nil, err
	}
	return artisans, nil
}

// attachSkills loads skills for all artisans in one query.
func (r *artisanRepository) attachSkills(ctx context.Context, artisans []*entity.Artisan) error {
	if len(artisans) == 0 {
		return nil
	}

	ids := make([]string, len(artisans))
	byID := make(map[uuid.UUID]*entity.Artisan, len(artisans))
	for i, a := range artisans {
		ids[i] = a.ID.String()
		byID[a.ID] = a
		a.Skills = []entity.Skill{}
	}

	query := `
		SELECT ask.artisan_id, sk.id, sk.name, sk.category
		FROM artisan_skills ask
		JOIN skills sk ON sk.id = ask.skill_id
		WHERE ask.artisan_id = ANY($1::uuid[])
		ORDER BY sk.name
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load artisan skills: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var artisanID uuid.UUID
		var s entity.Skill
		if err := rows.Scan(&artisanID, &s.ID, &s.Name, &s.Category); err != nil {
			return fmt.Errorf("scan artisan skill row: %w", err)
		}
		if a, ok := byID[artisanID]; ok {
			a.Skills = append(a.Skills, s)
		}
	}

	return rows.Err()
}
