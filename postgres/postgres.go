package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ai-chat-agent/conversation/api"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Postgres provides storage in PostgreSQL.
type Postgres struct {
	bun *bun.DB
}

// Connect connects to the database and ping the DB to ensure the connection is
// working.
func Connect(ctx context.Context, connStr string) (*Postgres, error) {
	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())
	return &Postgres{
		bun: db,
	}, nil
}

// CreateSchema creates the messages table if it does not exist yet.
func (pg *Postgres) CreateSchema(ctx context.Context) error {
	_, err := pg.bun.NewCreateTable().
		Model((*message)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (pg *Postgres) Close() error {
	return pg.bun.Close()
}

// ListMessages returns the messages in the database in insertion order,
// leaving out the ones listed in excludeMsgIDs.
func (pg *Postgres) ListMessages(ctx context.Context, excludeMsgIDs ...string) ([]api.Message, error) {
	var msgs []message
	q := pg.bun.NewSelect().
		Model(&msgs).
		Order("message.created_at ASC", "message.id ASC")

	if len(excludeMsgIDs) > 0 {
		q = q.Where("message.id NOT IN (?)", bun.In(excludeMsgIDs))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	out := make([]api.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.APIMessage()
	}
	return out, nil
}

// InsertMessage inserts a message into the database. The returned message
// holds generated fields, such as the message id.
func (pg *Postgres) InsertMessage(ctx context.Context, msg api.Message) (api.Message, error) {
	m := &message{
		ID:        uuid.NewString(),
		Name:      msg.Name,
		Role:      msg.Role,
		CreatedAt: msg.CreatedAt,
	}
	if m.Role == "" {
		m.Role = api.RoleUser
	}
	if _, err := pg.bun.NewInsert().Model(m).Returning("*").Exec(ctx); err != nil {
		return api.Message{}, fmt.Errorf("insert: %w", err)
	}
	return m.APIMessage(), nil
}
