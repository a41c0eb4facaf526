package profile

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "user_data.json")
	store, err := Open(path, testLogger())
	require.NoError(t, err)

	return store, path
}

func TestStore_DefaultsForUnknownUser(t *testing.T) {
	store, _ := openTestStore(t)

	p := store.Profile(404)

	assert.Empty(t, p.City)
	assert.Equal(t, LanguageRU, p.Language)
	assert.False(t, p.Banned)
	assert.False(t, store.IsBanned(404))

	// Reads must not create entries.
	assert.Equal(t, 0, store.Stats().TotalUsers)
}

func TestStore_RoundTrip(t *testing.T) {
	store, path := openTestStore(t)

	require.NoError(t, store.SetCity(1, "Paris"))
	require.NoError(t, store.SetLanguage(1, LanguageEN))
	require.NoError(t, store.SetLanguage(2, LanguageRU))
	require.NoError(t, store.Ban(3))

	reloaded, err := Open(path, testLogger())
	require.NoError(t, err)

	p := reloaded.Profile(1)
	assert.Equal(t, "Paris", p.City)
	assert.Equal(t, LanguageEN, p.Language)

	assert.Equal(t, LanguageRU, reloaded.Profile(2).Language)
	assert.True(t, reloaded.IsBanned(3))
	assert.Equal(t, 3, reloaded.Stats().TotalUsers)
}

func TestStore_BanUnbanRestoresActiveUsers(t *testing.T) {
	store, _ := openTestStore(t)

	require.NoError(t, store.SetCity(1, "Omsk"))
	require.NoError(t, store.SetCity(2, "Tomsk"))
	before := store.Stats().ActiveUsers

	require.NoError(t, store.Ban(2))
	assert.True(t, store.IsBanned(2))
	assert.Equal(t, before-1, store.Stats().ActiveUsers)

	require.NoError(t, store.Unban(2))
	assert.False(t, store.IsBanned(2))
	assert.Equal(t, before, store.Stats().ActiveUsers)
}

func TestStore_ActiveNeverExceedsTotal(t *testing.T) {
	store, _ := openTestStore(t)

	require.NoError(t, store.Ban(10))
	require.NoError(t, store.Ban(11))
	require.NoError(t, store.SetCity(12, "Kazan"))

	stats := store.Stats()
	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 1, stats.ActiveUsers)
	assert.LessOrEqual(t, stats.ActiveUsers, stats.TotalUsers)
}

func TestStore_CountersIndependentOfProfileMutations(t *testing.T) {
	store, _ := openTestStore(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.IncrementStat(StatWeatherRequests))
	}
	require.NoError(t, store.SetCity(7, "Minsk"))
	require.NoError(t, store.Ban(8))
	for i := 0; i < 2; i++ {
		require.NoError(t, store.IncrementStat(StatForecastRequests))
	}
	require.NoError(t, store.Unban(8))

	stats := store.Stats()
	assert.Equal(t, 3, stats.WeatherRequests)
	assert.Equal(t, 2, stats.ForecastRequests)
}

func TestStore_IncrementUnknownStat(t *testing.T) {
	store, _ := openTestStore(t)

	err := store.IncrementStat(StatName("uptime"))
	assert.ErrorIs(t, err, ErrUnknownStat)
}

func TestStore_MalformedDocumentStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store, err := Open(path, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 0, store.Stats().TotalUsers)
}

func TestStore_NullDocumentStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_data.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o644))

	store, err := Open(path, testLogger())
	require.NoError(t, err)

	require.NoError(t, store.SetCity(7, "Paris"))
	assert.Equal(t, "Paris", store.Profile(7).City)
	assert.Equal(t, 1, store.Stats().TotalUsers)
}

func TestStore_UnbanUnknownUserDoesNotCreateEntry(t *testing.T) {
	store, _ := openTestStore(t)

	require.NoError(t, store.Unban(99))
	assert.Equal(t, 0, store.Stats().TotalUsers)
}

func TestStore_SetCityValidation(t *testing.T) {
	store, _ := openTestStore(t)

	assert.Error(t, store.SetCity(1, "   "))
	assert.Equal(t, 0, store.Stats().TotalUsers)
}

func TestStore_SetLanguageValidation(t *testing.T) {
	store, _ := openTestStore(t)

	assert.Error(t, store.SetLanguage(1, Language("de")))
}

func TestStore_UserIDsSnapshot(t *testing.T) {
	store, _ := openTestStore(t)

	require.NoError(t, store.SetCity(30, "Perm"))
	require.NoError(t, store.SetCity(10, "Tula"))
	require.NoError(t, store.SetCity(20, "Ufa"))

	assert.Equal(t, []int64{10, 20, 30}, store.UserIDs())
}

func TestStore_BannedFlagOmittedWhenFalse(t *testing.T) {
	store, path := openTestStore(t)

	require.NoError(t, store.Ban(5))
	require.NoError(t, store.Unban(5))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "banned")
}
