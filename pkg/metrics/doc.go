/*
Package metrics exposes Prometheus instrumentation for AssetGraph.

All collectors are package-level and registered at init. The API layer
tracks GraphQL request counts and durations; the ingester tracks inserted
measurement rows, insert failures, and tick durations; the retention sweep
tracks runs, failures, and rows removed. Handler() returns the standard
promhttp handler for mounting at /metrics.
*/
package metrics
