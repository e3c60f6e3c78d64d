package command

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("JWT_SECRET", strings.Repeat("c", 32))
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "cli.db"))
	t.Setenv("SYNC_ENABLED", "false")
	keyring.MockInit()
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, stderr, err := runCLI(t, args...)
	require.NoError(t, err, stderr)
	return out
}

func TestNotifyLifecycle(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "notify", "create", "replied to your comment", "--user", "5", "--type", "comment_reply", "--from-name", "mina")
	assert.Contains(t, out, "created for user 5")
	mustRun(t, "notify", "create", "liked your comment", "-u", "5", "--type", "like")

	assert.Equal(t, "2\n", mustRun(t, "notify", "unread", "-u", "5"))

	out = mustRun(t, "notify", "list", "-u", "5")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "liked your comment", "newest first")
	assert.Contains(t, lines[1], "mina: replied to your comment")

	id := strings.Fields(strings.TrimPrefix(lines[0], "• "))[0]
	mustRun(t, "notify", "read", id, "-u", "5")
	assert.Equal(t, "1\n", mustRun(t, "notify", "unread", "-u", "5"))

	out = mustRun(t, "notify", "list", "--unread", "-u", "5")
	assert.NotContains(t, out, "liked your comment")

	mustRun(t, "notify", "read-all", "-u", "5")
	assert.Equal(t, "0\n", mustRun(t, "notify", "unread", "-u", "5"))

	mustRun(t, "notify", "clear", "-u", "5")
	assert.Contains(t, mustRun(t, "notify", "list", "-u", "5"), "No notifications")
}

func TestNotifyCreate_RecipientAndRefusal(t *testing.T) {
	setupEnv(t)

	mustRun(t, "settings", "toggle", "like", "-u", "9")
	out := mustRun(t, "notify", "create", "liked", "-u", "1", "--to", "9", "--type", "like")
	assert.Contains(t, out, "Not recorded")
	assert.Equal(t, "0\n", mustRun(t, "notify", "unread", "-u", "9"))

	_, _, err := runCLI(t, "notify", "create", "hi", "-u", "1", "--type", "follow")
	assert.ErrorContains(t, err, "invalid notification type")
}

func TestNotify_RequiresUser(t *testing.T) {
	setupEnv(t)

	_, _, err := runCLI(t, "notify", "list")
	assert.ErrorContains(t, err, "no user selected")
}

func TestSettingsCommands(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "settings", "get", "-u", "3")
	assert.Contains(t, out, "Settings for user 3")
	assert.Regexp(t, `sound\s+off`, out)

	out = mustRun(t, "settings", "toggle", "sound", "-u", "3")
	assert.Regexp(t, `sound\s+on`, out)

	out = mustRun(t, "settings", "set", "--desktop=true", "--type", "mention=off", "-u", "3")
	assert.Regexp(t, `desktop\s+on`, out)
	assert.Regexp(t, `mention\s+off`, out)
	assert.Regexp(t, `like\s+on`, out, "types merge key by key")
	assert.Regexp(t, `sound\s+on`, out, "unset flags keep their value")

	_, _, err := runCLI(t, "settings", "set", "-u", "3")
	assert.ErrorContains(t, err, "nothing to set")

	_, _, err = runCLI(t, "settings", "toggle", "follow", "-u", "3")
	assert.Error(t, err)
}

func TestSoundRingsBell(t *testing.T) {
	setupEnv(t)
	mustRun(t, "settings", "toggle", "sound", "-u", "4")

	_, stderr, err := runCLI(t, "notify", "create", "mentioned you", "-u", "4")
	require.NoError(t, err)
	assert.Contains(t, stderr, "\a")
}

func TestTokenIssueStoresCredentials(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "token", "issue", "-u", "12", "--name", "reader")
	assert.Contains(t, out, "stored in the keyring")

	out = mustRun(t, "token", "show")
	assert.Contains(t, out, "12 (reader)")

	// the stored user becomes the default
	mustRun(t, "notify", "create", "hello", "--type", "mention")
	assert.Equal(t, "1\n", mustRun(t, "notify", "unread", "-u", "12"))

	printed := mustRun(t, "token", "issue", "-u", "99", "--scope", "notifications:write", "--print")
	assert.Equal(t, 3, len(strings.Split(strings.TrimSpace(printed), ".")), "a JWT")

	mustRun(t, "token", "clear")
	_, _, err := runCLI(t, "token", "show")
	assert.Error(t, err)
}

func TestConfigFileFeedsEnvironment(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "from-config.db")
	cfgPath := filepath.Join(dir, "cli.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("poll_interval: 2s\ncreate_rate_burst: 7\n"), 0o600))

	// real environment wins over the file
	t.Setenv("SQLITE_PATH", dbPath)
	os.Unsetenv("POLL_INTERVAL")
	os.Unsetenv("CREATE_RATE_BURST")
	t.Cleanup(func() {
		os.Unsetenv("POLL_INTERVAL")
		os.Unsetenv("CREATE_RATE_BURST")
	})

	mustRun(t, "--config", cfgPath, "notify", "unread", "-u", "1")

	assert.Equal(t, "2s", os.Getenv("POLL_INTERVAL"))
	assert.Equal(t, "7", os.Getenv("CREATE_RATE_BURST"))
	assert.Equal(t, dbPath, os.Getenv("SQLITE_PATH"))
	assert.FileExists(t, dbPath)
}

func TestConfigFileMissing(t *testing.T) {
	setupEnv(t)
	_, _, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "notify", "unread", "-u", "1")
	assert.ErrorContains(t, err, "config file")
}
