package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-gateway/internal/models"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

// PostgresPayloadRepository stores last good payloads in the cached_payloads table.
type PostgresPayloadRepository struct {
	db *sqlx.DB
}

// NewPostgresPayloadRepository constructs the store.
func NewPostgresPayloadRepository(db *sqlx.DB) *PostgresPayloadRepository {
	return &PostgresPayloadRepository{db: db}
}

// Get loads the payload stored under fingerprint.
func (r *PostgresPayloadRepository) Get(ctx context.Context, fingerprint string) (*models.CachedPayload, error) {
	const query = `SELECT fingerprint, payload, cached_at FROM cached_payloads WHERE fingerprint = $1`
	var payload models.CachedPayload
	if err := r.db.GetContext(ctx, &payload, query, fingerprint); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("get cached payload %s: %w", fingerprint, err)
	}
	return &payload, nil
}

// Put upserts the entry; the newest write wins.
func (r *PostgresPayloadRepository) Put(ctx context.Context, payload models.CachedPayload) error {
	const query = `INSERT INTO cached_payloads (fingerprint, payload, cached_at)
VALUES (:fingerprint, :payload, :cached_at)
ON CONFLICT (fingerprint) DO UPDATE SET payload = EXCLUDED.payload, cached_at = EXCLUDED.cached_at`
	if _, err := r.db.NamedExecContext(ctx, query, payload); err != nil {
		return fmt.Errorf("upsert cached payload %s: %w", payload.Fingerprint, err)
	}
	return nil
}

// DeleteByPattern removes entries matching a glob pattern where * matches any run of characters.
func (r *PostgresPayloadRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	const query = `DELETE FROM cached_payloads WHERE fingerprint LIKE $1 ESCAPE '\'`
	if _, err := r.db.ExecContext(ctx, query, globToLike(pattern)); err != nil {
		return fmt.Errorf("delete cached payloads %s: %w", pattern, err)
	}
	return nil
}

// Ping checks the connection for readiness probes.
func (r *PostgresPayloadRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func globToLike(pattern string) string {
	return strings.ReplaceAll(likeEscaper.Replace(pattern), "*", "%")
}
