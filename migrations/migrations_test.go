package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(FS, "*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)
	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(FS, down)
		assert.NoError(t, err, "missing down migration for %s", up)
	}
}

func TestSchemaCoversStoredTables(t *testing.T) {
	var schema strings.Builder
	ups, err := fs.Glob(FS, "*.up.sql")
	require.NoError(t, err)
	for _, up := range ups {
		data, err := fs.ReadFile(FS, up)
		require.NoError(t, err)
		schema.Write(data)
	}
	assert.Contains(t, schema.String(), "diagnosis_reports")
	assert.Contains(t, schema.String(), "compliance_audit_events")
}
