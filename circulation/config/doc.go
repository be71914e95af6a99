// Package config loads the circulation service settings from the environment and builds
// PostgreSQL connections for the three supported drivers (pgx.Pool, sql.DB, sqlx.DB).
package config
