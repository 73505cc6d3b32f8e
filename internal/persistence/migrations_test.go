package persistence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreEmbeddedInOrder(t *testing.T) {
	names, err := MigrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "0001_init.sql", names[0])

	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}

func TestInitMigrationDeclaresTicketCodeConstraint(t *testing.T) {
	content, err := migrationFiles.ReadFile("migrations/0001_init.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content), "tickets_ticket_code_key"))
}
