// Package migrations applies the schema for the persistent stores: the
// Postgres evaluation-history tables and the ClickHouse score timeseries.
package migrations

import "embed"

// PostgresFS holds the evaluation-history migrations.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the score-timeseries migrations.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
