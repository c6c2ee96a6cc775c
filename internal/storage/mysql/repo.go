package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"counsel_locator/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(v any) any {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// UpsertAttorneys writes all records in one statement. Mock records are
// never stored.
func (r *Repo) UpsertAttorneys(ctx context.Context, as []domain.Attorney) error {
	values := make([]string, 0, len(as))
	args := make([]any, 0, len(as)*19) // 19 params per row
	for _, a := range as {
		if a.Source == domain.SourceMock || a.ID == "" {
			continue
		}
		values = append(values, "(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)")
		args = append(args,
			a.ID,
			a.Name,
			a.Source,
			valF64(a.Lat),
			valF64(a.Lng),
			a.Location,
			a.DetailedLocation,
			valStr(a.Phone),
			valStr(a.Website),
			valStr(a.Email),
			valStr(a.Address),
			a.Rating,
			a.Cases,
			valJSON(a.Specialization),
			valJSON(a.Languages),
			valJSON(a.SocialMedia),
			valJSON(a.Reviews),
			a.Verified,
			a.LastUpdated.UTC(),
		)
	}
	if len(values) == 0 {
		return nil
	}
	sqlStr := insertAttorneysPrefix + strings.Join(values, ",") + insertAttorneysOnDup
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("upsert attorneys: %w", err)
	}
	return nil
}

func (r *Repo) LogMiss(ctx context.Context, key string, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, key, reason)
	return err
}

func (r *Repo) ListNear(ctx context.Context, box domain.BoundingBox, limit int) ([]domain.Attorney, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.db.QueryContext(ctx, listNearSQL, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng, limit)
	if err != nil {
		return nil, fmt.Errorf("list near: %w", err)
	}
	defer rows.Close()

	var out []domain.Attorney
	for rows.Next() {
		a, err := scanAttorney(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanAttorney(rows *sql.Rows) (domain.Attorney, error) {
	var a domain.Attorney
	var (
		lat, lng                       sql.NullFloat64
		phone, website, email, address sql.NullString
		specJSON, langJSON, socialJSON []byte
		reviewsJSON                    []byte
		lastUpdated                    sql.NullTime
	)
	if err := rows.Scan(
		&a.ID,
		&a.Name,
		&a.Source,
		&lat, &lng,
		&a.Location,
		&a.DetailedLocation,
		&phone, &website, &email, &address,
		&a.Rating,
		&a.Cases,
		&specJSON, &langJSON, &socialJSON, &reviewsJSON,
		&a.Verified,
		&lastUpdated,
	); err != nil {
		return domain.Attorney{}, err
	}

	if lat.Valid && lng.Valid {
		la, ln := lat.Float64, lng.Float64
		a.Lat, a.Lng = &la, &ln
	}
	a.Phone, a.Website, a.Email, a.Address = phone.String, website.String, email.String, address.String
	if lastUpdated.Valid {
		a.LastUpdated = lastUpdated.Time
	}

	decodeJSONColumn(a.ID, "specialization", specJSON, &a.Specialization)
	decodeJSONColumn(a.ID, "languages", langJSON, &a.Languages)
	decodeJSONColumn(a.ID, "social_media", socialJSON, &a.SocialMedia)
	decodeJSONColumn(a.ID, "reviews", reviewsJSON, &a.Reviews)
	a.PracticeAreas = append([]string(nil), a.Specialization...)
	return a, nil
}

// decodeJSONColumn reports false when a non-empty column fails to decode.
// The row is still returned with the field left empty.
func decodeJSONColumn(id, column string, raw []byte, dst any) bool {
	if len(raw) == 0 {
		return true
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Warn().Err(err).Str("id", id).Str("column", column).Msg("dropping corrupt json column")
		return false
	}
	return true
}
