/*
Package config loads process configuration from environment variables.

The defaults match the original deployment: API port 4001, a 2s ingest
tick, a 24h measurement retention window, and a breadcrumb walk bounded at
5 levels. STORE_BACKEND selects the storage implementation (memory, bolt,
or postgres); the postgres backend additionally requires DATABASE_URL.
*/
package config
