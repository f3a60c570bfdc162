package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"liquidityCore/internal/ledger"
)

// serializationFailure is the SQLSTATE of a serializable transaction that lost a race.
const serializationFailure = "40001"

const schema = `
CREATE SEQUENCE IF NOT EXISTS ledger_version_seq;
CREATE TABLE IF NOT EXISTS ledger_state (
	key        BYTEA PRIMARY KEY,
	value      JSONB NOT NULL,
	version    BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// keyParam binds a composite key as bytea. Composite keys carry NUL
// separators, which TEXT parameters reject.
func keyParam(key string) []byte {
	return []byte(key)
}

// Store is a ledger.Store backed by the ledger_state table.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	return &Store{pool: pool}, nil
}

// EnsureSchema creates the ledger table and version sequence when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return errors.Wrap(err, "create ledger schema")
	}
	return nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (ledger.Record, error) {
	var rec ledger.Record
	row := s.pool.QueryRow(ctx, `SELECT value, version FROM ledger_state WHERE key=$1`, keyParam(key))
	if err := row.Scan(&rec.Value, &rec.Version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Record{}, ledger.ErrNotFound
		}
		return ledger.Record{}, errors.Wrapf(err, "get %q", key)
	}
	return rec, nil
}

// Apply validates the read set and applies the writes in one serializable
// transaction. A lost serialization race is reported as ErrWriteConflict.
func (s *Store) Apply(ctx context.Context, cs ledger.ChangeSet) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return errors.Wrap(err, "begin ledger tx")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for key, want := range cs.Reads {
		var version int64
		err = tx.QueryRow(ctx, `SELECT version FROM ledger_state WHERE key=$1 FOR UPDATE`, keyParam(key)).Scan(&version)
		if errors.Is(err, pgx.ErrNoRows) {
			version, err = 0, nil
		}
		if err != nil {
			return mapConflict(errors.Wrapf(err, "read version of %q", key))
		}
		if version != want {
			return ledger.ErrWriteConflict
		}
	}

	if len(cs.Writes) > 0 {
		batch := &pgx.Batch{}
		for _, w := range cs.Writes {
			if w.Delete {
				batch.Queue(`DELETE FROM ledger_state WHERE key=$1`, keyParam(w.Key))
				continue
			}
			batch.Queue(`
				INSERT INTO ledger_state (key, value, version, updated_at)
				VALUES ($1, $2, nextval('ledger_version_seq'), now())
				ON CONFLICT (key)
				DO UPDATE SET
					value = EXCLUDED.value,
					version = EXCLUDED.version,
					updated_at = now()
			`, keyParam(w.Key), string(w.Value))
		}

		br := tx.SendBatch(ctx, batch)
		for range cs.Writes {
			if _, err = br.Exec(); err != nil {
				_ = br.Close()
				return mapConflict(errors.Wrap(err, "write ledger state"))
			}
		}
		if err = br.Close(); err != nil {
			return mapConflict(errors.Wrap(err, "close ledger batch"))
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return mapConflict(errors.Wrap(err, "commit ledger tx"))
	}
	return nil
}

func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == serializationFailure {
		return ledger.ErrWriteConflict
	}
	return err
}
