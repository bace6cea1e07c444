/*
Package storage provides persistence for AssetGraph's three logical tables:
the asset catalog, saved view snapshots, and the time-series measurement
feed.

The Store interface is row-oriented — every operation is a single filter,
insert, or delete round trip; the application layer never joins. Three
backends implement it:

  - PostgresStore: hosted Postgres (production). Schema DDL is ensured on
    open; the retention sweep delegates to a server-side
    cleanup_measurements() procedure so old rows are deleted without
    crossing the wire.
  - BoltStore: embedded BoltDB for single-node deployments. JSON values in
    per-table buckets; measurement keys sort chronologically so the sweep
    is a range delete.
  - MemoryStore: in-process maps/slices, the mode the original service kept
    snapshots in, and the reference implementation used by tests.

Lookups that find nothing return empty results, never errors. Errors mean
the backing store itself failed and are wrapped with context.
*/
package storage
