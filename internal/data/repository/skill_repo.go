package repository

import (
	"context"
	"fmt"
	"strings"

	"artisan-marketplace/internal/data/entity"
	"artisan-marketplace/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SkillRepository interface {
	FindAll(ctx context.Context) ([]entity.Skill, error)
	// FindByNames matches names case-insensitively; unknown names are simply absent from the result.
	FindByNames(ctx context.Context, names []string) ([]entity.Skill, error)
}

type skillRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSkillRepository(db database.PgxIface, log *zap.Logger) SkillRepository {
	return &skillRepository{
		db:  db,
		log: log.With(zap.String("repository", "skill")),
	}
}

func (r *skillRepository) FindAll(ctx context.Context) ([]entity.Skill, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, category FROM skills ORDER BY name`)
	if err != nil {
		r.log.Error("Failed to list skills", zap.Error(err))
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return collectSkills(rows)
}

func (r *skillRepository) FindByNames(ctx context.Context, names []string) ([]entity.Skill, error) {
	query := `
		SELECT id, name, category
		FROM skills
		WHERE LOWER(name) = ANY($1::text[])
		ORDER BY name
	`

	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(strings.TrimSpace(n))
	}

	rows, err := r.db.Query(ctx, query, lowered)
	if err != nil {
		r.log.Error("Failed to find skills by name", zap.Error(err), zap.Strings("names", names))
		return nil, fmt.Errorf("find skills by name: %w", err)
	}
	return collectSkills(rows)
}

func collectSkills(rows pgx.Rows) ([]entity.Skill, error) {
	defer rows.Close()

	var skills []entity.Skill
	for rows.Next() {
		var s entity.Skill
		if err := rows.Scan(&s.ID, &s.Name, &s.Category); err != nil {
			return nil, fmt.Errorf("scan skill row: %w", err)
		}
		skills = append(skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skill rows: %w", err)
	}
	return skills, nil
}
