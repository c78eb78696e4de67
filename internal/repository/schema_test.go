package repository

import (
	"os"
	"regexp"
	"strings"
	"testing"
)

// The repositories and sql/schema.sql ship together; these tests keep
// the DDL honest against the queries without needing a live server.

func loadSchema(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile("../../sql/schema.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	return string(b)
}

func tableDDL(t *testing.T, schema, table string) string {
	t.Helper()
	marker := "CREATE TABLE IF NOT EXISTS " + table + " ("
	i := strings.Index(schema, marker)
	if i < 0 {
		t.Fatalf("table %s not found in schema", table)
	}
	rest := schema[i+len(marker):]
	j := strings.Index(rest, "ENGINE=InnoDB")
	if j < 0 {
		t.Fatalf("table %s: unterminated DDL", table)
	}
	return rest[:j]
}

// Signup inserts only userInsertColumns; under strict mode MySQL
// rejects the row unless every other users column has a database-side
// value (a default, AUTO_INCREMENT, or nullability).
func TestUsersSchemaAcceptsSignupInsert(t *testing.T) {
	inserted := map[string]bool{}
	for _, col := range strings.Split(userInsertColumns, ",") {
		inserted[strings.TrimSpace(col)] = true
	}

	columnLine := regexp.MustCompile(`^([a-z_]+)\s`)
	for _, line := range strings.Split(tableDDL(t, loadSchema(t), "users"), "\n") {
		line = strings.TrimSpace(line)
		m := columnLine.FindStringSubmatch(line)
		if m == nil {
			continue // key or constraint line
		}
		col := m[1]
		if inserted[col] {
			continue
		}
		nullable := strings.Contains(strings.ReplaceAll(line, "NOT NULL", ""), "NULL")
		if !strings.Contains(line, "DEFAULT") &&
			!strings.Contains(line, "AUTO_INCREMENT") &&
			!nullable {
			t.Errorf("users.%s is NOT NULL with no default and is not set by signup", col)
		}
	}
}

// Ticket type ids are natural names reused across events, so the table
// key must be scoped by event_id or a second event with a 'general'
// ticket collides with the first.
func TestTicketTypeKeyScopedPerEvent(t *testing.T) {
	ddl := tableDDL(t, loadSchema(t), "ticket_types")
	if !strings.Contains(ddl, "PRIMARY KEY (event_id, id)") {
		t.Fatalf("ticket_types primary key is not (event_id, id):\n%s", ddl)
	}
}
