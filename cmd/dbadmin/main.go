package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"Despiece/internal/auth"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// schema keeps the DDL next to the tool that applies it. The API itself
// never creates tables.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		login TEXT UNIQUE NOT NULL,
		email TEXT NOT NULL,
		password TEXT NOT NULL,
		description TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS designs (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT,
		design_type TEXT NOT NULL DEFAULT 'viga',
		config JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS designs_user_idx ON designs (user_id, updated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS design_exports (
		id UUID PRIMARY KEY,
		design_id INTEGER NOT NULL REFERENCES designs(id) ON DELETE CASCADE,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		format TEXT NOT NULL,
		filename TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS design_exports_design_idx ON design_exports (design_id, created_at DESC)`,
}

var dropForce bool

var rootCmd = &cobra.Command{
	Use:   "dbadmin",
	Short: "Database administration for the despiece API",
}

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the users, designs and design_exports tables",
	Run: func(cmd *cobra.Command, args []string) {
		db := openDB()
		defer db.Close()
		for _, stmt := range schema {
			if _, err := db.Exec(stmt); err != nil {
				log.Fatalf("init-db: %v", err)
			}
		}
		fmt.Println("Esquema creado")
	},
}

var checkDBCmd = &cobra.Command{
	Use:   "check-db",
	Short: "Ping the database and count rows per table",
	Run: func(cmd *cobra.Command, args []string) {
		db := openDB()
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Fatalf("check-db: %v", err)
		}
		for _, table := range []string{"users", "designs", "design_exports"} {
			var n int
			if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
				fmt.Printf("%s: %v\n", table, err)
				continue
			}
			fmt.Printf("%s: %d filas\n", table, n)
		}
	},
}

var listTablesCmd = &cobra.Command{
	Use:   "list-tables",
	Short: "List tables in the public schema",
	Run: func(cmd *cobra.Command, args []string) {
		db := openDB()
		defer db.Close()
		rows, err := db.Query(
			"SELECT table_name FROM information_schema.tables WHERE table_schema='public' ORDER BY table_name")
		if err != nil {
			log.Fatalf("list-tables: %v", err)
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				log.Fatalf("list-tables: %v", err)
			}
			fmt.Println(name)
		}
		if err := rows.Err(); err != nil {
			log.Fatalf("list-tables: %v", err)
		}
	},
}

var dropTablesCmd = &cobra.Command{
	Use:   "drop-tables",
	Short: "Drop the service tables (requires --force)",
	Run: func(cmd *cobra.Command, args []string) {
		if !dropForce {
			fmt.Fprintln(os.Stderr, "rehusando borrar tablas sin --force")
			os.Exit(1)
		}
		db := openDB()
		defer db.Close()
		for _, table := range []string{"design_exports", "designs", "users"} {
			if _, err := db.Exec("DROP TABLE IF EXISTS " + table + " CASCADE"); err != nil {
				log.Fatalf("drop-tables: %v", err)
			}
			fmt.Printf("%s eliminada\n", table)
		}
	},
}

func openDB() *sql.DB {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment")
	}
	return auth.InitDB()
}

func init() {
	dropTablesCmd.Flags().BoolVar(&dropForce, "force", false, "Confirm dropping every table")
	rootCmd.AddCommand(initDBCmd)
	rootCmd.AddCommand(checkDBCmd)
	rootCmd.AddCommand(listTablesCmd)
	rootCmd.AddCommand(dropTablesCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
