package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// documentTable describes one guild-scoped collection of JSON documents.
// Every table shares the layout (guild_id, <key>, schema_version, data).
type documentTable struct {
	name      string
	keyColumn string
	// keyParam is the placeholder expression used to bind the key, e.g. "$2::text::uuid"
	keyParam string
	// keySelect reads the key back as text or bigint
	keySelect string
}

var (
	userAccountsTable = documentTable{
		name:      "user_accounts",
		keyColumn: "user_id",
		keyParam:  "$2",
		keySelect: "user_id::text",
	}
	companiesTable = documentTable{
		name:      "companies",
		keyColumn: "company_id",
		keyParam:  "$2::text::uuid",
		keySelect: "company_id::text",
	}
	companyStocksTable = documentTable{
		name:      "company_stocks",
		keyColumn: "company_id",
		keyParam:  "$2::text::uuid",
		keySelect: "company_id::text",
	}
	channelRewardsTable = documentTable{
		name:      "channel_rewards",
		keyColumn: "channel_id",
		keyParam:  "$2",
		keySelect: "channel_id::text",
	}
)

// storedDocument is one raw row of a document table
type storedDocument struct {
	Key           string
	SchemaVersion int
	Data          []byte
}

// get returns nil when no document exists for key
func (t documentTable) get(ctx context.Context, q Queryable, guildID int64, key any) (*storedDocument, error) {
	query := fmt.Sprintf(`
		SELECT %s, schema_version, data
		FROM %s
		WHERE guild_id = $1 AND %s = %s
	`, t.keySelect, t.name, t.keyColumn, t.keyParam)

	var doc storedDocument
	err := q.QueryRow(ctx, query, guildID, key).Scan(&doc.Key, &doc.SchemaVersion, &doc.Data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// upsert inserts the document or shallow-merges its top-level fields into the stored one
func (t documentTable) upsert(ctx context.Context, q Queryable, guildID int64, key any, schemaVersion int, data []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (guild_id, %[2]s, schema_version, data)
		VALUES ($1, %[3]s, $3, $4)
		ON CONFLICT (guild_id, %[2]s) DO UPDATE SET
			data = %[1]s.data || EXCLUDED.data,
			schema_version = EXCLUDED.schema_version,
			updated_at = NOW()
	`, t.name, t.keyColumn, t.keyParam)

	_, err := q.Exec(ctx, query, guildID, key, schemaVersion, data)
	return err
}

func (t documentTable) delete(ctx context.Context, q Queryable, guildID int64, key any) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE guild_id = $1 AND %s = %s`, t.name, t.keyColumn, t.keyParam)
	_, err := q.Exec(ctx, query, guildID, key)
	return err
}

func (t documentTable) list(ctx context.Context, q Queryable, guildID int64) ([]storedDocument, error) {
	query := fmt.Sprintf(`
		SELECT %s, schema_version, data
		FROM %s
		WHERE guild_id = $1
		ORDER BY created_at, %s
	`, t.keySelect, t.name, t.keyColumn)

	rows, err := q.Query(ctx, query, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []storedDocument
	for rows.Next() {
		var doc storedDocument
		if err := rows.Scan(&doc.Key, &doc.SchemaVersion, &doc.Data); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
