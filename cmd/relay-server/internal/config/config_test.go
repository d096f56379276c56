package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_PRIVATE_KEY", "/etc/relay/private.pem")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "*", cfg.Server.OriginURL)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "relay.db", cfg.Database.Database)
	assert.Equal(t, "relay_", cfg.Database.Prefix)
	assert.Equal(t, 24, cfg.Auth.TokenTTLHours)
}

func TestLoad_RequiresPrivateKey(t *testing.T) {
	t.Setenv("AUTH_PRIVATE_KEY", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_PRIVATE_KEY")
}

func TestLoad_RequiresPasswordForServerDatabases(t *testing.T) {
	t.Setenv("AUTH_PRIVATE_KEY", "/etc/relay/private.pem")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTH_PRIVATE_KEY", "/etc/relay/private.pem")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("AUTH_TOKEN_TTL_HOURS", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 2, cfg.Auth.TokenTTLHours)
}

func TestGetDSN(t *testing.T) {
	mysql := DatabaseConfig{Driver: "mysql", Host: "db", Port: 3306, User: "u", Password: "p", Database: "relay"}
	assert.Equal(t, "u:p@tcp(db:3306)/relay?parseTime=true", mysql.GetDSN())

	postgres := DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", Database: "relay"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=relay sslmode=disable", postgres.GetDSN())

	sqlite := DatabaseConfig{Driver: "sqlite3", Database: "relay.db"}
	assert.Equal(t, "relay.db", sqlite.GetDSN())

	unknown := DatabaseConfig{Driver: "oracle"}
	assert.Equal(t, "", unknown.GetDSN())
}
