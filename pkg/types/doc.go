/*
Package types defines the core data structures shared across AssetGraph:
the asset hierarchy nodes, saved view snapshots, time-series measurements,
and the simulated signal definitions used by the ingester.

Assets form a forest via ParentID; the child relation is derived at query
time and never stored. Measurement severity is classified with absolute
thresholds shared by every signal:

	value > 110  → critical
	value > 105  → high
	otherwise    → normal
*/
package types
