package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/pulseai-labs/anomaly-hub/internal/engine"
	"github.com/pulseai-labs/anomaly-hub/pkg/logger"
)

// PostgresClient is the audit sink's connection to Postgres: the same
// pgxpool construction, health-check, and timeout idiom the teacher uses
// for its metric/diagnosis stores.
type PostgresClient struct {
	pool *pgxpool.Pool
}

func NewPostgresClient(connectionURL string) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connectionURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection URL: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute
	config.ConnConfig.ConnectTimeout = 10 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{pool: pool}, nil
}

func (c *PostgresClient) Close() {
	c.pool.Close()
}

func (c *PostgresClient) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.pool.Ping(ctx)
}

// Save persists one DetectionResult, implementing engine.AuditSink.
func (c *PostgresClient) Save(ctx context.Context, result *engine.DetectionResult) error {
	findingsJSON, err := json.Marshal(result.Findings)
	if err != nil {
		logger.Error("failed to marshal findings", zap.String("agent_id", result.AgentID), zap.Error(err))
		return err
	}
	rawMetricsJSON, err := json.Marshal(result.RawMetrics)
	if err != nil {
		return err
	}

	ts, err := time.Parse(time.RFC3339, result.Timestamp)
	if err != nil {
		ts = time.Now().UTC()
	}

	query := `
		INSERT INTO detections (agent_id, timestamp, health_score, ensemble_score, raw_metrics, findings)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var id int64
	err = c.pool.QueryRow(
		ctx, query,
		result.AgentID, ts, result.HealthScore, result.EnsembleScore,
		rawMetricsJSON, findingsJSON,
	).Scan(&id)
	if err != nil {
		logger.Error("failed to save detection", zap.String("agent_id", result.AgentID), zap.Error(err))
		return fmt.Errorf("failed to save detection: %w", err)
	}

	return nil
}

// GetRecentDetections returns the detections recorded for an agent since a
// given time, most recent first.
func (c *PostgresClient) GetRecentDetections(ctx context.Context, agentID string, since time.Time) ([]*DetectionRecord, error) {
	query := `
		SELECT id, agent_id, timestamp, health_score, ensemble_score, raw_metrics, findings
		FROM detections
		WHERE agent_id = $1 AND timestamp > $2
		ORDER BY timestamp DESC
		LIMIT 1000
	`

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := c.pool.Query(ctx, query, agentID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query detections: %w", err)
	}
	defer rows.Close()

	var records []*DetectionRecord
	for rows.Next() {
		var r DetectionRecord
		var rawMetricsJSON, findingsJSON []byte

		if err := rows.Scan(&r.ID, &r.AgentID, &r.Timestamp, &r.HealthScore, &r.EnsembleScore, &rawMetricsJSON, &findingsJSON); err != nil {
			logger.Error("failed to scan detection row", zap.Error(err))
			continue
		}
		if err := json.Unmarshal(rawMetricsJSON, &r.RawMetrics); err != nil {
			logger.Error("failed to unmarshal raw metrics", zap.Error(err))
			continue
		}
		if err := json.Unmarshal(findingsJSON, &r.Findings); err != nil {
			logger.Error("failed to unmarshal findings", zap.Error(err))
			continue
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating detections: %w", err)
	}

	return records, nil
}

// DeleteOldDetections prunes detections older than olderThan, returning
// the number of rows removed.
func (c *PostgresClient) DeleteOldDetections(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `DELETE FROM detections WHERE timestamp < $1`

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-olderThan)
	result, err := c.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old detections: %w", err)
	}

	return result.RowsAffected(), nil
}

func (c *PostgresClient) GetPoolStats() *pgxpool.Stat {
	return c.pool.Stat()
}
