package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNamesAreOrdered(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)

	assert.Equal(t, []string{"0001_reference.sql", "0002_tickets.sql", "0003_collaboration.sql", "0004_inbox_chat.sql"}, names)
}
