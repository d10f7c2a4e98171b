// Package migrations embeds the SQL schema migrations. Files are applied in
// lexical order and are written to be idempotent.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Files lists the migrations in apply order.
var Files = []string{
	"001_create_users.sql",
	"002_create_tasks.sql",
	"003_create_conversation_history.sql",
	"004_event_driven.sql",
}
