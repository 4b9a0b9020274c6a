// Package items implements the item API: request validation, the SQLite
// store, a TTL read cache and the service that ties them together under
// the performance guard.
//
// Routes, relative to DefaultPrefix:
//
//	POST   /create-item
//	GET    /get-item/{item_id}
//	PUT    /update-item/{item_id}
//	DELETE /delete-item/{item_id}
package items
