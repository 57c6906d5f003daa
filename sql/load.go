package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed chunks.sql
var chunksSQL string

//go:embed audit.sql
var auditSQL string

// Function lists for verification
var ChunksFunctions = []string{
	"init_vector_store",
	"reset_vector_store",
	"insert_vector_chunk",
	"select_nearest_chunk",
	"count_vector_chunks",
}

var AuditFunctions = []string{
	"init_audit_logs",
	"insert_audit_log",
	"select_recent_audit_logs",
	"select_audit_logs_since",
	"count_audit_logs",
	"avg_audit_latency",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadChunksSql loads the vector store SQL functions
func LoadChunksSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, ChunksFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing chunks functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(chunksSQL)
	if err != nil {
		return fmt.Errorf("error executing chunks SQL: %w", err)
	}

	exist, err := checkFunctions(db, ChunksFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL chunks functions loaded successfully")
	return nil
}

// LoadAuditSql loads the audit log SQL functions
func LoadAuditSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, AuditFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing audit functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(auditSQL)
	if err != nil {
		return fmt.Errorf("error executing audit SQL: %w", err)
	}

	exist, err := checkFunctions(db, AuditFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL audit functions loaded successfully")
	return nil
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadChunksSql(db, force); err != nil {
		return err
	}

	if err := LoadAuditSql(db, force); err != nil {
		return err
	}

	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
