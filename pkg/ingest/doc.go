/*
Package ingest simulates a live sensor feed.

On every tick (default 2s) the ingestor draws one reading per simulated
signal from a uniform distribution around the signal's base value,
classifies its severity, and appends the whole set of readings to the
measurement table in a single batched insert. Insert failures are logged
and swallowed; ingestion is fire-and-forget with no retry.

A second, independent timer (default 1m) triggers the retention sweep,
which delegates age-based deletion to the store. On the postgres backend
that is a server-side procedure; if it has not been provisioned the sweep
degrades to a logged warning and the ingestor keeps running.
*/
package ingest
