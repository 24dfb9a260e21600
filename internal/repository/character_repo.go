package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-character-api/internal/model"
)

type CharacterRepository struct {
	pool *pgxpool.Pool
}

func NewCharacterRepository(pool *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{pool: pool}
}

func (r *CharacterRepository) List(ctx context.Context) ([]model.Character, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, lastname FROM characters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	characters := make([]model.Character, 0)
	for rows.Next() {
		var c model.Character
		if err := rows.Scan(&c.ID, &c.Name, &c.Lastname); err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		characters = append(characters, c)
	}
	return characters, rows.Err()
}

func (r *CharacterRepository) FindByID(ctx context.Context, id int64) (model.Character, error) {
	var c model.Character
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, lastname FROM characters WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Lastname)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Character{}, model.ErrCharacterNotFound
	}
	if err != nil {
		return model.Character{}, fmt.Errorf("find character by id: %w", err)
	}
	return c, nil
}

func (r *CharacterRepository) Create(ctx context.Context, c model.Character) (model.Character, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO characters (name, lastname) VALUES ($1, $2) RETURNING id`,
		c.Name, c.Lastname).Scan(&c.ID)
	if err != nil {
		return model.Character{}, fmt.Errorf("create character: %w", err)
	}
	return c, nil
}

func (r *CharacterRepository) Update(ctx context.Context, c model.Character) (model.Character, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE characters SET name = $2, lastname = $3, updated_at = now() WHERE id = $1`,
		c.ID, c.Name, c.Lastname)
	if err != nil {
		return model.Character{}, fmt.Errorf("update character: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Character{}, model.ErrCharacterNotFound
	}
	return c, nil
}

func (r *CharacterRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM characters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCharacterNotFound
	}
	return nil
}
