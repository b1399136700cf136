package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

// SQLCheck checks a MariaDB/MySQL server on demand.  Unlike the MongoDB
// handle it is never fatal: an unreachable server only fails readiness.
type SQLCheck struct {
	db *sql.DB
}

// OpenSQLCheck prepares a small connection pool without dialing.  The first
// connection is made by Ping.
func OpenSQLCheck(user, pass, host, port, name string) (*SQLCheck, error) {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = pass
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, port)
	cfg.DBName = name
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Timeout = 3 * time.Second

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mariadb: %w", err)
	}

	// Pool settings
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &SQLCheck{db: db}, nil
}

// Name identifies the check in readiness responses.
func (p *SQLCheck) Name() string { return "mariadb" }

// Ping verifies the server answers within 3 seconds.
func (p *SQLCheck) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return p.db.PingContext(ctx)
}

// Close releases the pool.
func (p *SQLCheck) Close() error { return p.db.Close() }
