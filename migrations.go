package relay

import (
	"embed"
	"fmt"
)

// MigrationFiles contains all SQL schema files embedded in the binary, one
// per supported driver. Users can apply them with their preferred migration
// tool (goose, golang-migrate, atlas, ...) or execute them directly the way
// cmd/relay-server does at startup.
//
//go:embed migrations/*.sql
var MigrationFiles embed.FS

// Schema returns the embedded DDL for the given driver name
// ("mysql", "postgres" or "sqlite3").
func Schema(driverName string) (string, error) {
	b, err := MigrationFiles.ReadFile(fmt.Sprintf("migrations/0001_init.%s.sql", driverName))
	if err != nil {
		return "", NewErrorWithCause(ErrCodeConfiguration, "no schema for driver "+driverName, err)
	}
	return string(b), nil
}
