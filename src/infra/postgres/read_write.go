package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	ReadHost       string
	WriteHost      string
	ReadPort       string
	WritePort      string
	DBName         string
	Username       string
	Password       string
	MaxConnections int
}

// ReadWriteClient separa o pool de réplica (leituras do matchmaker e listagens)
// do pool primário (tudo que trava ou escreve).
type ReadWriteClient struct {
	readPool  *pgxpool.Pool
	writePool *pgxpool.Pool
}

func NewReadWriteClient(cfg Config) (*ReadWriteClient, error) {
	writePool, err := NewPostgresClient(cfg.WriteHost, cfg.WritePort, cfg.DBName, cfg.Username, cfg.Password, cfg.MaxConnections)
	if err != nil {
		return nil, err
	}

	// Sem réplica configurada, as leituras vão para o primário
	if cfg.ReadHost == "" || (cfg.ReadHost == cfg.WriteHost && cfg.ReadPort == cfg.WritePort) {
		return &ReadWriteClient{readPool: writePool, writePool: writePool}, nil
	}

	readPool, err := NewPostgresClient(cfg.ReadHost, cfg.ReadPort, cfg.DBName, cfg.Username, cfg.Password, cfg.MaxConnections)
	if err != nil {
		writePool.Close()
		return nil, err
	}

	return &ReadWriteClient{
		readPool:  readPool,
		writePool: writePool,
	}, nil
}

func (rwc *ReadWriteClient) GetReadPool() *pgxpool.Pool {
	return rwc.readPool
}

func (rwc *ReadWriteClient) GetWritePool() *pgxpool.Pool {
	return rwc.writePool
}

func (rwc *ReadWriteClient) HealthCheck(ctx context.Context) error {
	if err := rwc.writePool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres write pool: %w", err)
	}
	if rwc.readPool != rwc.writePool {
		if err := rwc.readPool.Ping(ctx); err != nil {
			return fmt.Errorf("postgres read pool: %w", err)
		}
	}
	return nil
}

func (rwc *ReadWriteClient) Close() {
	rwc.readPool.Close()
	if rwc.writePool != rwc.readPool {
		rwc.writePool.Close()
	}
}
