package postgresjournal

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusops/library-circulation/journal"
)

const schemaTemplate = `
CREATE TABLE IF NOT EXISTS %[1]s (
	sequence_number BIGSERIAL PRIMARY KEY,
	event_type TEXT NOT NULL,
	occurred_at TIMESTAMP WITH TIME ZONE NOT NULL,
	payload JSONB NOT NULL,
	metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
	appended_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS %[1]s_event_type_idx ON %[1]s (event_type);
CREATE INDEX IF NOT EXISTS %[1]s_payload_idx ON %[1]s USING gin (payload jsonb_path_ops);
`

// SchemaSQL returns the DDL which creates the journal table and its indexes.
func (j Journal) SchemaSQL() string {
	return fmt.Sprintf(schemaTemplate, j.tableName)
}

// CreateSchema creates the journal table and indexes if they do not exist yet.
func (j Journal) CreateSchema(ctx context.Context) error {
	sqlQuery := j.SchemaSQL()

	if _, err := j.db.Exec(ctx, sqlQuery); err != nil {
		j.logError(logMsgCreateSchemaFailed, err, logAttrTable, j.tableName)

		return errors.Join(journal.ErrCreatingSchemaFailed, err)
	}

	j.logOperation(logMsgSchemaReady, logAttrTable, j.tableName)

	return nil
}
