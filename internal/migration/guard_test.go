package migration

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanSQLFlagsDestructiveStatements(t *testing.T) {
	src := `CREATE TABLE widgets (id UUID PRIMARY KEY);

DROP TABLE legacy_widgets;
ALTER TABLE widgets DROP COLUMN colour;
ALTER TABLE widgets DROP CONSTRAINT widgets_colour_check;
TRUNCATE audit_logs;
DELETE FROM sessions;
DELETE FROM sessions WHERE expires_at < NOW();
`
	findings := ScanSQL("0001.up.sql", src)
	require.Len(t, findings, 4)

	assert.Equal(t, "DROP TABLE", findings[0].Rule)
	assert.Equal(t, 3, findings[0].Line)
	assert.Equal(t, "DROP COLUMN", findings[1].Rule)
	assert.Equal(t, 4, findings[1].Line)
	assert.Equal(t, "TRUNCATE", findings[2].Rule)
	assert.Equal(t, "DELETE without WHERE", findings[3].Rule)
	assert.Equal(t, "DELETE FROM sessions", findings[3].Statement)
	assert.Equal(t, "0001.up.sql:7: DELETE without WHERE: DELETE FROM sessions", findings[3].String())
}

func TestScanSQLFlagsColumnDropWithoutKeyword(t *testing.T) {
	src := `ALTER TABLE users DROP email;
ALTER TABLE users DROP IF EXISTS phone CASCADE;
ALTER TABLE users DROP COLUMN name;
ALTER TABLE users DROP COLUMN IF EXISTS nickname;
ALTER TABLE users ALTER COLUMN role DROP DEFAULT, DROP "legacy";
`
	findings := ScanSQL("0003.up.sql", src)
	require.Len(t, findings, 5)
	for i, f := range findings {
		assert.Equal(t, "DROP COLUMN", f.Rule)
		assert.Equal(t, i+1, f.Line)
	}
	assert.Equal(t, "ALTER TABLE users DROP IF EXISTS phone CASCADE", findings[1].Statement)
}

func TestScanSQLIgnoresNonColumnDrops(t *testing.T) {
	src := `ALTER TABLE users DROP CONSTRAINT users_email_key;
ALTER TABLE users DROP CONSTRAINT IF EXISTS users_phone_check;
ALTER TABLE users ALTER COLUMN phone DROP NOT NULL;
ALTER TABLE users ALTER COLUMN role DROP DEFAULT;
ALTER TABLE users ALTER COLUMN id DROP IDENTITY IF EXISTS;
ALTER TABLE users ALTER COLUMN slug DROP EXPRESSION;
ALTER TABLE users ADD COLUMN dropped_at TIMESTAMPTZ;
`
	assert.Empty(t, ScanSQL("0004.up.sql", src))
}

func TestScanSQLHonoursAllowMarker(t *testing.T) {
	src := `-- guard:allow
DROP TABLE scratch;

-- retire the old column
ALTER TABLE orders
    DROP COLUMN legacy_ref; -- guard:allow
`
	// a trailing marker belongs to the next statement, so only the
	// annotated DROP TABLE is exempt
	findings := ScanSQL("0002.up.sql", src)
	require.Len(t, findings, 1)
	assert.Equal(t, "DROP COLUMN", findings[0].Rule)
	assert.Equal(t, 5, findings[0].Line)
	assert.Equal(t, "ALTER TABLE orders DROP COLUMN legacy_ref", findings[0].Statement)
}

func TestScanSkipsDownMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_init.up.sql":   {Data: []byte("CREATE TABLE a (id INT);")},
		"0001_init.down.sql": {Data: []byte("DROP TABLE a;")},
		"0002_trim.up.sql":   {Data: []byte("TRUNCATE a;")},
	}
	findings, err := Scan(fsys)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "0002_trim.up.sql", findings[0].File)
}

func TestEmbeddedMigrationsPassGuard(t *testing.T) {
	ups, err := fs.Glob(Migrations(), "*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(Migrations(), "*.down.sql")
	require.NoError(t, err)
	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))

	findings, err := Scan(Migrations())
	require.NoError(t, err)
	assert.Empty(t, findings)
}
