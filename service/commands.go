package service

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ivansvit/upgraded-blog/app/database"
	"github.com/ivansvit/upgraded-blog/app/models"
	"github.com/ivansvit/upgraded-blog/app/seed"
	"github.com/ivansvit/upgraded-blog/app/sessions"
	"github.com/ivansvit/upgraded-blog/config"
	"github.com/ivansvit/upgraded-blog/pkg/logger"
)

var osExit = os.Exit

// HandleCommand runs a blog subcommand and returns an exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		printHelp()
		osExit(1)
		return 1
	}

	cmd := args[0]
	if cmd == "help" {
		printHelp()
		return 0
	}
	switch cmd {
	case "serve", "init", "seed", "backup", "restore", "clean":
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		printHelp()
		osExit(1)
		return 1
	}
	if cmd == "restore" && len(args) < 2 {
		fmt.Println("Error: backup file path required for restore")
		osExit(1)
		return 1
	}

	if cmd == "serve" {
		if err := RunAppServer(args[1:]); err != nil {
			fmt.Printf("Error: %v\n", err)
			osExit(1)
			return 1
		}
		return 0
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		osExit(1)
		return 1
	}

	var code int
	switch cmd {
	case "init":
		code = initDb(cfg)
	case "seed":
		code = seedDb(cfg, args[1:])
	case "backup":
		code = backup(cfg)
	case "restore":
		code = restore(cfg, args[1])
	case "clean":
		code = clean(cfg)
	}
	if code != 0 {
		osExit(code)
	}
	return code
}

// printHelp prints help for the blog subcommands.
func printHelp() {
	helpText := `Usage: upgraded-blog <command> [options]

Commands:
  serve [--port <port>]           Run the blog service
  init                            Create the database schema
  seed [--users n] [--posts n] [--comments n] [--seed n]
                                  Fill the database with demo content
  backup                          Back up the database and the session store
  restore <file>                  Restore the database from a backup
  clean                           Remove the local database and sessions
  help                            Display this help message
  version                         Show version information
`
	fmt.Println(helpText)
}

// initDb creates the schema. It is safe to run against an existing database.
func initDb(cfg *config.Config) int {
	if cfg.DBDriver == "sqlite" && exists(cfg.DatabaseURL) {
		fmt.Printf("Database already exists at %s. Use 'clean' first if you want to reinitialize.\n", cfg.DatabaseURL)
		return 0
	}

	db, err := database.Connect(cfg, logger.New(cfg.LogLevel, cfg.Env))
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}
	defer database.Close(db)

	fmt.Println("Database initialized successfully")
	return 0
}

// seedDb writes generated users, posts and comments.
func seedDb(cfg *config.Config, args []string) int {
	opts := seed.DefaultOptions()
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	fs.IntVar(&opts.Users, "users", opts.Users, "number of users")
	fs.IntVar(&opts.Posts, "posts", opts.Posts, "number of posts")
	fs.IntVar(&opts.Comments, "comments", opts.Comments, "number of comments")
	fs.Int64Var(&opts.Seed, "seed", opts.Seed, "random seed, 0 for a random one")
	fs.StringVar(&opts.Password, "password", opts.Password, "password shared by the seeded accounts")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	db, err := database.Connect(cfg, logger.New(cfg.LogLevel, cfg.Env))
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer database.Close(db)

	res, err := seed.New(db, opts).Run(context.Background())
	if err != nil {
		fmt.Printf("Failed to seed database: %v\n", err)
		return 1
	}

	fmt.Printf("Seeded %d users, %d posts and %d comments\n", len(res.Users), len(res.Posts), res.Comments)
	for _, u := range res.Users {
		fmt.Printf("  user %d: %s <%s>\n", u.ID, u.Name, u.Email)
	}
	fmt.Printf("All seeded accounts use the password %q\n", opts.Password)
	return 0
}

// backup copies the database and, when present, the session store into
// the backup directory.
func backup(cfg *config.Config) int {
	if cfg.DBDriver != "sqlite" {
		fmt.Printf("Backup is only supported for sqlite; use pg_dump for %s\n", cfg.DBDriver)
		return 1
	}
	if !exists(cfg.DatabaseURL) {
		fmt.Println("No database exists to backup")
		return 1
	}

	if err := os.MkdirAll(backupDir, 0755); err != nil {
		fmt.Printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL, logger.New(cfg.LogLevel, cfg.Env))
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer database.Close(db)

	stamp := time.Now().Unix()
	backupFile := filepath.Join(backupDir, fmt.Sprintf("backup_%d.db", stamp))
	if err := database.Backup(db, backupFile); err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}
	fmt.Printf("Database backed up successfully to %s\n", backupFile)

	if exists(cfg.SessionPath) {
		sessionFile := filepath.Join(backupDir, fmt.Sprintf("sessions_%d.bak", stamp))
		if err := backupSessions(cfg, sessionFile); err != nil {
			fmt.Printf("Failed to backup sessions: %v\n", err)
			return 1
		}
		fmt.Printf("Sessions backed up successfully to %s\n", sessionFile)
	}
	return 0
}

func backupSessions(cfg *config.Config, dest string) error {
	store, err := sessions.Open(sessions.Options{
		Path:   cfg.SessionPath,
		Secret: cfg.SecretKey,
		TTL:    cfg.SessionTTL,
	}, logger.New(cfg.LogLevel, cfg.Env))
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	return store.Backup(f)
}

// restore replaces the sqlite database with backupFile after checking that
// it holds the blog schema.
func restore(cfg *config.Config, backupFile string) int {
	if cfg.DBDriver != "sqlite" {
		fmt.Printf("Restore is only supported for sqlite; use pg_restore for %s\n", cfg.DBDriver)
		return 1
	}
	if !exists(backupFile) {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if err := checkBackup(cfg, backupFile); err != nil {
		fmt.Printf("Invalid backup file %s: %v\n", backupFile, err)
		return 1
	}

	if exists(cfg.DatabaseURL) {
		if !confirm("Existing database found. Do you want to replace it?") {
			fmt.Println("Operation cancelled")
			return 1
		}
		for _, path := range sqliteFiles(cfg.DatabaseURL) {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				fmt.Printf("Failed to remove existing database: %v\n", err)
				return 1
			}
		}
	}

	if err := copyFile(backupFile, cfg.DatabaseURL); err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}
	fmt.Println("Database restored successfully")
	return 0
}

func checkBackup(cfg *config.Config, backupFile string) error {
	db, err := database.Open("sqlite", backupFile, logger.New("error", cfg.Env))
	if err != nil {
		return err
	}
	defer database.Close(db)

	for _, table := range []interface{}{&models.User{}, &models.Post{}, &models.Comment{}} {
		if !db.Migrator().HasTable(table) {
			return fmt.Errorf("missing table for %T", table)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// clean removes the local sqlite database and the session store.
func clean(cfg *config.Config) int {
	var targets []string
	if cfg.DBDriver == "sqlite" {
		for _, path := range sqliteFiles(cfg.DatabaseURL) {
			if exists(path) {
				targets = append(targets, path)
			}
		}
	}
	if exists(cfg.SessionPath) {
		targets = append(targets, cfg.SessionPath)
	}
	if len(targets) == 0 {
		fmt.Println("Database is already clean (does not exist)")
		return 0
	}

	if !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Println("Operation cancelled")
		return 0
	}

	for _, path := range targets {
		if err := os.RemoveAll(path); err != nil {
			fmt.Printf("Failed to clean database: %v\n", err)
			return 1
		}
	}
	fmt.Println("Database cleaned successfully")
	return 0
}
