package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartguard/heartguard/internal/platform/db"
	"github.com/heartguard/heartguard/pkg/pagination"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const recordCols = `id, user_id, input, probability, has_condition, tier, source,
	raw_latency_ms, diet_plan, source_file, created_at`

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	input, err := json.Marshal(rec.Input)
	if err != nil {
		return fmt.Errorf("prediction create: encode input: %w", err)
	}
	plan, err := json.Marshal(rec.DietPlan)
	if err != nil {
		return fmt.Errorf("prediction create: encode diet plan: %w", err)
	}
	var sourceFile []byte
	if rec.SourceFile != nil {
		if sourceFile, err = json.Marshal(rec.SourceFile); err != nil {
			return fmt.Errorf("prediction create: encode source file: %w", err)
		}
	}

	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prediction (
			id, user_id, input, probability, has_condition, tier, source,
			raw_latency_ms, diet_plan, source_file
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at`,
		rec.ID, rec.UserID, input, rec.Probability, rec.HasCondition, rec.Tier,
		rec.Source, rec.RawLatencyMS, plan, sourceFile,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, err := scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM prediction WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (r *repoPG) List(ctx context.Context, filter ListFilter, page pagination.Params) ([]*Record, int, error) {
	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 4)
	if filter.UserID != uuid.Nil {
		args = append(args, filter.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Tier != "" {
		args = append(args, filter.Tier)
		where = append(where, fmt.Sprintf("tier = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM prediction`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, page.Limit, page.Offset)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recordCols+` FROM prediction`+clause+
			fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	records := make([]*Record, 0, page.Limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func (r *repoPG) AddAnnotation(ctx context.Context, a *Annotation) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prediction_annotation (id, prediction_id, author_id, body)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at`,
		a.ID, a.PredictionID, a.AuthorID, a.Body,
	).Scan(&a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23503 foreign_key_violation: the prediction does not exist.
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (r *repoPG) Annotations(ctx context.Context, predictionID uuid.UUID) ([]*Annotation, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, prediction_id, author_id, body, created_at
		FROM prediction_annotation
		WHERE prediction_id = $1
		ORDER BY created_at ASC`, predictionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*Annotation
	for rows.Next() {
		a := &Annotation{}
		if err := rows.Scan(&a.ID, &a.PredictionID, &a.AuthorID, &a.Body, &a.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, a)
	}
	return notes, rows.Err()
}

func scanRecord(row pgx.Row) (*Record, error) {
	rec := &Record{}
	var input, plan, sourceFile []byte
	err := row.Scan(
		&rec.ID, &rec.UserID, &input, &rec.Probability, &rec.HasCondition,
		&rec.Tier, &rec.Source, &rec.RawLatencyMS, &plan, &sourceFile, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(input, &rec.Input); err != nil {
		return nil, fmt.Errorf("prediction scan: decode input: %w", err)
	}
	if err := json.Unmarshal(plan, &rec.DietPlan); err != nil {
		return nil, fmt.Errorf("prediction scan: decode diet plan: %w", err)
	}
	if len(sourceFile) > 0 {
		rec.SourceFile = &SourceFile{}
		if err := json.Unmarshal(sourceFile, rec.SourceFile); err != nil {
			return nil, fmt.Errorf("prediction scan: decode source file: %w", err)
		}
	}
	return rec, nil
}
