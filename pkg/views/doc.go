/*
Package views persists named view snapshots: which signals a user had
selected or hidden, the viewed date range, and optional color overrides.

Snapshots are write-once records — they are created and deleted, never
updated. DateRange and CustomColors are opaque, caller-defined strings;
the service stores whatever encoding the front end sends.
*/
package views
