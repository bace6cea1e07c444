// Package api serves the asset catalog and snapshot operations over a
// GraphQL HTTP endpoint, alongside health and metrics routes.
//
// The GraphQL surface mirrors the browser client contract: hierarchy
// navigation (assets, getAsset, getAssetPath, getAssetsByIds), name search,
// and snapshot save/list/delete. Requests get per-request child batching,
// a request id, structured access logging, permissive CORS, and a per-client
// rate limit.
package api
