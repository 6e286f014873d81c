package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/streamdate/sapi/internal/config"
)

// Pools holds the connection pools for the two application databases.
// Both point at the same MySQL server with the same pool limits.
type Pools struct {
	Dating *sql.DB
	Social *sql.DB
}

// Open connects to both databases and applies the configured pool
// limits. Each pool is pinged before it is returned.
func Open(ctx context.Context, cfg config.MySQL) (*Pools, error) {
	dating, err := open(ctx, cfg, cfg.Databases.Dating)
	if err != nil {
		return nil, fmt.Errorf("failed to open dating database: %w", err)
	}

	social, err := open(ctx, cfg, cfg.Databases.Social)
	if err != nil {
		dating.Close()
		return nil, fmt.Errorf("failed to open social database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Int("maxIdle", cfg.Connections.MaxIdle).
		Int("maxOpen", cfg.Connections.MaxOpen).
		Msg("Connected to MySQL")

	return &Pools{Dating: dating, Social: social}, nil
}

func open(ctx context.Context, cfg config.MySQL, dbName string) (*sql.DB, error) {
	conn, err := sql.Open("mysql", DSN(cfg, dbName))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbName, err)
	}

	conn.SetMaxIdleConns(cfg.Connections.MaxIdle)
	conn.SetMaxOpenConns(cfg.Connections.MaxOpen)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", dbName, err)
	}

	return conn, nil
}

// DSN builds the driver DSN for one of the configured databases.
func DSN(cfg config.MySQL, dbName string) string {
	dsn := mysql.NewConfig()
	dsn.Net = "tcp"
	dsn.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	dsn.User = cfg.User
	dsn.Passwd = cfg.Pass
	dsn.DBName = dbName
	dsn.ParseTime = true
	dsn.Timeout = 5 * time.Second
	return dsn.FormatDSN()
}

// Ping checks both pools, for readiness probes.
func (p *Pools) Ping(ctx context.Context) error {
	if err := p.Dating.PingContext(ctx); err != nil {
		return fmt.Errorf("dating database: %w", err)
	}
	if err := p.Social.PingContext(ctx); err != nil {
		return fmt.Errorf("social database: %w", err)
	}
	return nil
}

// Close closes both pools.
func (p *Pools) Close() error {
	var firstErr error
	for _, db := range []*sql.DB{p.Dating, p.Social} {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
