/*
Package catalog resolves queries against the fixed-depth asset hierarchy:
children-of, substring search, id lookups, and root-to-node breadcrumb
paths.

All lookups fail open to empty results — an unknown id or a blank search
query is valid input with an empty answer, not an error. The breadcrumb
walk is bounded (default 5 levels) as a guard against cyclic or malformed
parent data; hitting the bound is reported explicitly via the truncated
flag rather than silently shortening the path.

Loader provides per-request memoization for the derived children field, so
traversing a subtree does not repeat store queries for shared parents.
*/
package catalog
