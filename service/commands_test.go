package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ivansvit/upgraded-blog/app/sessions"
	"github.com/ivansvit/upgraded-blog/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(f func()) string {
	var buf bytes.Buffer
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan bool)
	go func() {
		_, _ = io.Copy(&buf, r)
		done <- true
	}()

	f()
	_ = w.Close()
	os.Stdout = oldStdout
	<-done

	return buf.String()
}

func mockStdin(input string, f func()) {
	oldStdin := os.Stdin
	r, w, _ := os.Pipe()
	os.Stdin = r

	// Write input in a goroutine to avoid blocking
	go func() {
		w.Write([]byte(input))
		w.Close()
	}()

	f()

	os.Stdin = oldStdin
}

// setupTestConfig points the commands at a temporary data directory.
func setupTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		SecretKey:     "test-secret",
		EmailPassword: "test-password",
		Env:           "test",
		Port:          "0",
		DBDriver:      "sqlite",
		DatabaseURL:   filepath.Join(dir, "blog.db"),
		SessionPath:   filepath.Join(dir, "sessions"),
		SessionTTL:    time.Hour,
		MailHost:      "localhost",
		MailPort:      2525,
		MailFrom:      "blog@example.com",
		MailTo:        "owner@example.com",
		MailTimeout:   time.Second,
		AdminIDs:      "1",
		LogLevel:      "error",
	}

	oldLoad, oldBackupDir := loadConfig, backupDir
	loadConfig = func() (*config.Config, error) { return cfg, nil }
	backupDir = filepath.Join(dir, "backups")
	t.Cleanup(func() {
		loadConfig = oldLoad
		backupDir = oldBackupDir
	})
	return cfg
}

// runCommand runs HandleCommand and reports the exit code passed to osExit.
func runCommand(t *testing.T, args ...string) (int, string) {
	t.Helper()
	exitCode := 0
	oldOsExit := osExit
	osExit = func(code int) { exitCode = code }
	defer func() { osExit = oldOsExit }()

	output := captureOutput(func() {
		HandleCommand(args)
	})
	return exitCode, output
}

func TestHandleCommand(t *testing.T) {
	setupTestConfig(t)

	tests := []struct {
		name           string
		args           []string
		expectedOutput string
		expectedExit   int
	}{
		{
			name:           "no arguments",
			args:           []string{},
			expectedOutput: "Usage: upgraded-blog <command>",
			expectedExit:   1,
		},
		{
			name:           "help command",
			args:           []string{"help"},
			expectedOutput: "Usage: upgraded-blog <command>",
			expectedExit:   0,
		},
		{
			name:           "unknown command",
			args:           []string{"unknown"},
			expectedOutput: "Unknown command: unknown",
			expectedExit:   1,
		},
		{
			name:           "restore without file",
			args:           []string{"restore"},
			expectedOutput: "Error: backup file path required for restore",
			expectedExit:   1,
		},
		{
			name:           "seed with bad flag",
			args:           []string{"seed", "--bogus"},
			expectedOutput: "flag provided but not defined: -bogus",
			expectedExit:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exitCode, output := runCommand(t, tt.args...)
			assert.Contains(t, output, tt.expectedOutput)
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}

func TestHandleCommandConfigError(t *testing.T) {
	setupTestConfig(t)
	loadConfig = func() (*config.Config, error) { return nil, errors.New("bad config") }

	exitCode, output := runCommand(t, "init")
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, output, "Failed to load configuration: bad config")
}

func TestInitDb(t *testing.T) {
	cfg := setupTestConfig(t)

	t.Run("initialize new database", func(t *testing.T) {
		exitCode, output := runCommand(t, "init")
		assert.Equal(t, 0, exitCode)
		assert.Contains(t, output, "Database initialized successfully")
		assert.FileExists(t, cfg.DatabaseURL)
	})

	t.Run("initialize existing database", func(t *testing.T) {
		_, output := runCommand(t, "init")
		assert.Contains(t, output, "Database already exists")
	})
}

func TestSeedDb(t *testing.T) {
	setupTestConfig(t)

	exitCode, output := runCommand(t, "seed", "--users", "2", "--posts", "2", "--comments", "3", "--seed", "1")
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, output, "Seeded 2 users, 2 posts and 3 comments")
	assert.Contains(t, output, `All seeded accounts use the password "password"`)
}

func TestClean(t *testing.T) {
	cfg := setupTestConfig(t)

	t.Run("clean non-existent database", func(t *testing.T) {
		_, output := runCommand(t, "clean")
		assert.Contains(t, output, "Database is already clean")
	})

	t.Run("clean existing database - cancelled", func(t *testing.T) {
		runCommand(t, "init")
		require.FileExists(t, cfg.DatabaseURL)

		var output string
		mockStdin("n\n", func() {
			_, output = runCommand(t, "clean")
		})

		assert.Contains(t, output, "Operation cancelled")
		assert.FileExists(t, cfg.DatabaseURL)
	})

	t.Run("clean existing database - confirmed", func(t *testing.T) {
		store, err := sessions.Open(sessions.Options{Path: cfg.SessionPath, Secret: cfg.SecretKey}, zerolog.Nop())
		require.NoError(t, err)
		require.NoError(t, store.Close())

		var output string
		mockStdin("y\n", func() {
			_, output = runCommand(t, "clean")
		})

		assert.Contains(t, output, "Database cleaned successfully")
		assert.NoFileExists(t, cfg.DatabaseURL)
		assert.NoDirExists(t, cfg.SessionPath)
	})
}

func TestBackupAndRestore(t *testing.T) {
	cfg := setupTestConfig(t)

	t.Run("backup non-existent database", func(t *testing.T) {
		exitCode, output := runCommand(t, "backup")
		assert.Equal(t, 1, exitCode)
		assert.Contains(t, output, "No database exists to backup")
	})

	var backupFile string
	t.Run("backup existing database", func(t *testing.T) {
		runCommand(t, "seed", "--users", "1", "--posts", "1", "--comments", "0", "--seed", "3")
		store, err := sessions.Open(sessions.Options{Path: cfg.SessionPath, Secret: cfg.SecretKey}, zerolog.Nop())
		require.NoError(t, err)
		require.NoError(t, store.Close())

		exitCode, output := runCommand(t, "backup")
		assert.Equal(t, 0, exitCode)
		assert.Contains(t, output, "Database backed up successfully")
		assert.Contains(t, output, "Sessions backed up successfully")

		matches, err := filepath.Glob(filepath.Join(backupDir, "backup_*.db"))
		require.NoError(t, err)
		require.Len(t, matches, 1)
		backupFile = matches[0]
	})

	t.Run("restore non-existent backup", func(t *testing.T) {
		exitCode, output := runCommand(t, "restore", "nonexistent.db")
		assert.Equal(t, 1, exitCode)
		assert.Contains(t, output, "Backup file does not exist")
	})

	t.Run("restore invalid backup", func(t *testing.T) {
		bogus := filepath.Join(t.TempDir(), "bogus.db")
		require.NoError(t, os.WriteFile(bogus, []byte("test backup data"), 0644))

		exitCode, output := runCommand(t, "restore", bogus)
		assert.Equal(t, 1, exitCode)
		assert.Contains(t, output, "Invalid backup file")
	})

	t.Run("restore with existing database - cancelled", func(t *testing.T) {
		require.NotEmpty(t, backupFile)
		var output string
		mockStdin("n\n", func() {
			_, output = runCommand(t, "restore", backupFile)
		})
		assert.Contains(t, output, "Operation cancelled")
	})

	t.Run("restore with existing database - confirmed", func(t *testing.T) {
		require.NotEmpty(t, backupFile)
		var (
			exitCode int
			output   string
		)
		mockStdin("y\n", func() {
			exitCode, output = runCommand(t, "restore", backupFile)
		})
		assert.Equal(t, 0, exitCode)
		assert.Contains(t, output, "Database restored successfully")
		assert.FileExists(t, cfg.DatabaseURL)
	})

	t.Run("restore to clean state", func(t *testing.T) {
		require.NotEmpty(t, backupFile)
		require.NoError(t, os.Remove(cfg.DatabaseURL))

		exitCode, output := runCommand(t, "restore", backupFile)
		assert.Equal(t, 0, exitCode)
		assert.Contains(t, output, "Database restored successfully")
	})
}

func TestBackupRequiresSqlite(t *testing.T) {
	cfg := setupTestConfig(t)
	cfg.DBDriver = "postgres"

	exitCode, output := runCommand(t, "backup")
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, output, "Backup is only supported for sqlite")
}

func TestNewServer(t *testing.T) {
	cfg := setupTestConfig(t)

	srv, err := newServer(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer srv.close()

	assert.Equal(t, ":0", srv.http.Addr)

	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, srv.run(ctx))
}

func TestNewServerInvalidAdminIDs(t *testing.T) {
	cfg := setupTestConfig(t)
	cfg.AdminIDs = "abc"

	_, err := newServer(cfg, zerolog.Nop())
	assert.Error(t, err)
}
