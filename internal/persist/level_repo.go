package persist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/pawsteps/engine/internal/data"
	"github.com/pawsteps/engine/internal/world"
)

// ErrUnnamedLevel is returned when saving a level whose name yields no slug.
var ErrUnnamedLevel = errors.New("level has no usable name")

type LevelRow struct {
	Slug      string
	Name      string
	NextLevel string
	Body      []byte // JSON level document
	Digest    []byte // BLAKE2b-256 of Body
	CreatedAt time.Time
	UpdatedAt time.Time
}

type LevelRepo struct {
	db *DB
}

func NewLevelRepo(db *DB) *LevelRepo {
	return &LevelRepo{db: db}
}

var folder = cases.Fold()

// Slug normalises a level name into its database key: NFC, case folded,
// every run of non letters/digits collapsed into one '-'.
func Slug(name string) string {
	s := folder.String(norm.NFC.String(name))
	var b strings.Builder
	dash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Digest returns the BLAKE2b-256 sum of a level body.
func Digest(body []byte) []byte {
	sum := blake2b.Sum256(body)
	return sum[:]
}

// Save stores the level under its slug. It reports false without writing
// when the stored body has the same digest.
func (r *LevelRepo) Save(ctx context.Context, l *world.Level) (bool, error) {
	slug := Slug(l.Name)
	if slug == "" {
		return false, ErrUnnamedLevel
	}
	var buf bytes.Buffer
	if err := world.Encode(&buf, l, world.FormatJSON); err != nil {
		return false, err
	}
	body := buf.Bytes()
	digest := Digest(body)

	var stored []byte
	err := r.db.Pool.QueryRow(ctx, `SELECT digest FROM levels WHERE slug = $1`, slug).Scan(&stored)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return false, fmt.Errorf("load digest %s: %w", slug, err)
	case bytes.Equal(stored, digest):
		return false, nil
	}

	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO levels (slug, name, next_level, body, digest)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (slug) DO UPDATE SET
		   name = EXCLUDED.name, next_level = EXCLUDED.next_level,
		   body = EXCLUDED.body, digest = EXCLUDED.digest, updated_at = now()`,
		slug, l.Name, l.NextLevel, string(body), digest,
	)
	if err != nil {
		return false, fmt.Errorf("save level %s: %w", slug, err)
	}
	return true, nil
}

// Load returns the level stored under name's slug, or nil if none.
func (r *LevelRepo) Load(ctx context.Context, name string, rel *data.RelationTable) (*world.Level, error) {
	row, err := r.Get(ctx, Slug(name))
	if err != nil || row == nil {
		return nil, err
	}
	l, err := world.Decode(bytes.NewReader(row.Body), world.FormatJSON, rel)
	if err != nil {
		return nil, fmt.Errorf("decode stored level %s: %w", row.Slug, err)
	}
	return l, nil
}

func (r *LevelRepo) Get(ctx context.Context, slug string) (*LevelRow, error) {
	row := &LevelRow{}
	var body string
	err := r.db.Pool.QueryRow(ctx,
		`SELECT slug, name, next_level, body::text, digest, created_at, updated_at
		 FROM levels WHERE slug = $1`, slug,
	).Scan(&row.Slug, &row.Name, &row.NextLevel, &body, &row.Digest, &row.CreatedAt, &row.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	row.Body = []byte(body)
	return row, nil
}

// List returns every stored level without bodies, ordered by slug.
func (r *LevelRepo) List(ctx context.Context) ([]LevelRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT slug, name, next_level, digest, created_at, updated_at
		 FROM levels ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LevelRow
	for rows.Next() {
		var lr LevelRow
		if err := rows.Scan(&lr.Slug, &lr.Name, &lr.NextLevel, &lr.Digest, &lr.CreatedAt, &lr.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}
