package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLCheck_UnreachableServer(t *testing.T) {
	// Port 1 on loopback is never a MySQL server.
	p, err := OpenSQLCheck("app_user", "secret", "127.0.0.1", "1", "enterprise_db")
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, "mariadb", p.Name())
	assert.Error(t, p.Ping(context.Background()))
}
