package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/spendly/internal/app"
	"github.com/MrJamesThe3rd/spendly/internal/auth"
	"github.com/MrJamesThe3rd/spendly/internal/calendar"
	"github.com/MrJamesThe3rd/spendly/internal/config"
	"github.com/MrJamesThe3rd/spendly/internal/export"
	"github.com/MrJamesThe3rd/spendly/internal/importer"
	"github.com/MrJamesThe3rd/spendly/internal/ledger"
	"github.com/MrJamesThe3rd/spendly/internal/ledger/store/memory"
)

// useMemoryApp points every command at one shared in-memory store.
func useMemoryApp(t *testing.T) {
	t.Helper()

	store := memory.New()
	cal := calendar.NewService(store)

	openApp = func(context.Context, *config.Config) (*app.App, error) {
		return &app.App{
			Ledgers:  ledger.NewService(store),
			Calendar: cal,
			Importer: importer.NewService(),
			Exporter: export.NewService(cal, store),
		}, nil
	}

	t.Cleanup(func() { openApp = app.Open })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	err := run(context.Background(), &out, args...)

	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("AUTH_SECRET", "cli-test-secret")

	out, err := execute(t, "token", "--user", "alice", "--ttl", "1h")
	require.NoError(t, err)

	issuer, err := auth.NewIssuer("cli-test-secret", time.Hour)
	require.NoError(t, err)

	userID, err := issuer.Verify(string(bytes.TrimSpace([]byte(out))))
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)
}

func TestTokenCommand_RequiresSecret(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")

	_, err := execute(t, "token", "--user", "alice", "--ttl", "1h")
	assert.Error(t, err)
}

func TestImportAndShow(t *testing.T) {
	useMemoryApp(t)

	path := writeFile(t, "march.csv", "name;amount;note\nRent;700,00;\nPower;45,50;estimate\n")

	out, err := execute(t, "import", path, "--user", "bob", "--year", "2025", "--month", "3", "--tab", "main", "--dry-run=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 items into 2025-03 (main)")
	assert.Contains(t, out, "745.50")

	out, err = execute(t, "show", "--user", "bob", "--year", "2025", "--month", "3", "--tab", "main")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-03 (main) unpaid")
	assert.Contains(t, out, "Power")
	assert.Contains(t, out, "estimate")
}

func TestImport_DryRunSavesNothing(t *testing.T) {
	useMemoryApp(t)

	path := writeFile(t, "april.csv", "name,amount\nGym,30\n")

	out, err := execute(t, "import", path, "--user", "carol", "--year", "2025", "--month", "4", "--tab", "main", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "1 items parsed, nothing saved.")

	out, err = execute(t, "show", "--user", "carol", "--year", "2025", "--month", "4", "--tab", "main")
	require.NoError(t, err)
	assert.NotContains(t, out, "Gym")
}

func TestImport_RejectsUnknownFormat(t *testing.T) {
	useMemoryApp(t)

	path := writeFile(t, "items.pdf", "nope")

	_, err := execute(t, "import", path, "--user", "dave", "--year", "2025", "--month", "4", "--tab", "main", "--dry-run=false")
	assert.ErrorIs(t, err, importer.ErrUnsupportedFormat)
}

func TestShow_InvalidMonth(t *testing.T) {
	useMemoryApp(t)

	_, err := execute(t, "show", "--user", "erin", "--year", "2025", "--month", "13", "--tab", "main")
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)
}

func TestExportCommand(t *testing.T) {
	useMemoryApp(t)

	path := writeFile(t, "may.csv", "name;amount\nInternet;30\n")
	_, err := execute(t, "import", path, "--user", "frank", "--year", "2025", "--month", "5", "--tab", "main", "--dry-run=false")
	require.NoError(t, err)

	dir := t.TempDir()

	out, err := execute(t, "export", "--user", "frank", "--year", "2025", "--tab", "", "-o", dir)
	require.NoError(t, err)

	file := filepath.Join(dir, "spendly_2025.xlsx")
	assert.Contains(t, out, file)

	f, err := excelize.OpenFile(file)
	require.NoError(t, err)

	t.Cleanup(func() { _ = f.Close() })

	assert.Contains(t, f.GetSheetList(), "Summary")
}
