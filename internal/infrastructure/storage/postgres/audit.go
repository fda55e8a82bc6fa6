package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"shopledger/internal/core/id"
	"shopledger/internal/domain/audit"
)

const auditTable = "audit_log"

// CompressionAlgo names how the changes column is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the size above which changes are zstd-compressed.
const DefaultCompressThreshold = 4 * 1024

type auditRow struct {
	ID                id.ID           `db:"id"`
	ShopID            id.ID           `db:"shop_id"`
	EntityType        string          `db:"entity_type"`
	EntityID          id.ID           `db:"entity_id"`
	Action            audit.Action    `db:"action"`
	UserID            id.ID           `db:"user_id"`
	Changes           json.RawMessage `db:"changes"`
	ChangesCompressed []byte          `db:"changes_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditLog implements audit.Recorder and audit.Reader on the audit_log table.
// Large change sets (a sale with many items) are stored zstd-compressed.
type AuditLog struct {
	txm               *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var (
	_ audit.Recorder = (*AuditLog)(nil)
	_ audit.Reader   = (*AuditLog)(nil)
)

// NewAuditLog creates the audit trail.
func NewAuditLog(txm *TxManager) (*AuditLog, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditLog{
		txm:               txm,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
	}, nil
}

// Record appends an event within the caller's transaction.
func (a *AuditLog) Record(ctx context.Context, event audit.Event) error {
	changes, err := json.Marshal(event.Changes)
	if err != nil {
		return fmt.Errorf("marshal audit changes: %w", err)
	}

	row := a.encode(auditRow{
		ID:         id.New(),
		ShopID:     event.ShopID,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		Action:     event.Action,
		UserID:     event.UserID,
		Changes:    changes,
		CreatedAt:  time.Now().UTC(),
	})

	sql, args, err := Builder().
		Insert(auditTable).
		SetMap(StructToMap(row)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}
	if _, err := a.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// History returns the events of one entity, oldest first.
func (a *AuditLog) History(ctx context.Context, shopID id.ID, entityType string, entityID id.ID) ([]audit.Entry, error) {
	sql, args, err := Builder().
		Select(ExtractDBColumns[auditRow]()...).
		From(auditTable).
		Where(squirrel.Eq{"shop_id": shopID, "entity_type": entityType, "entity_id": entityID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit query: %w", err)
	}

	var rows []auditRow
	if err := pgxscan.Select(ctx, a.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}

	entries := make([]audit.Entry, 0, len(rows))
	for _, r := range rows {
		r, err := a.decode(r)
		if err != nil {
			return nil, err
		}
		entries = append(entries, audit.Entry{
			ID:         r.ID,
			ShopID:     r.ShopID,
			EntityType: r.EntityType,
			EntityID:   r.EntityID,
			Action:     r.Action,
			UserID:     r.UserID,
			Changes:    r.Changes,
			CreatedAt:  r.CreatedAt,
		})
	}
	return entries, nil
}

func (a *AuditLog) encode(r auditRow) auditRow {
	r.CompressionAlgo = CompressionNone
	if len(r.Changes) > a.compressThreshold {
		r.ChangesCompressed = a.encoder.EncodeAll(r.Changes, nil)
		r.Changes = nil
		r.CompressionAlgo = CompressionZstd
	}
	return r
}

func (a *AuditLog) decode(r auditRow) (auditRow, error) {
	if r.CompressionAlgo != CompressionZstd || len(r.ChangesCompressed) == 0 {
		return r, nil
	}
	raw, err := a.decoder.DecodeAll(r.ChangesCompressed, nil)
	if err != nil {
		return r, fmt.Errorf("decompress audit changes: %w", err)
	}
	r.Changes = raw
	r.ChangesCompressed = nil
	return r, nil
}
