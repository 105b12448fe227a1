// Package core holds the listing desk's domain logic, independent of HTTP and
// HTML. The web server, the CLI and the tests all drive it the same way.
//
// # Sessions
//
// Every browser session owns a [Session]: a [State] (navigation context,
// synced orders, financial records, the product edit buffer and the last
// export), a [DetailCache] of product details keyed by ASIN, a [Router] and
// the [Actions] the UI can trigger. State is never shared between sessions.
// Orders and financial records are mirrored to a storage.SnapshotStore so a
// restarted session picks them up again.
//
// # Navigation
//
// Views form a closed set of variants implementing [View]. [Router.Navigate]
// records the previous view, shows a loading placeholder, builds the page
// from synced data and hands it to a [Renderer]. Each navigation carries a
// generation token; results computed for a token that is no longer current
// are dropped with [ErrStaleNavigation].
//
// # Sync
//
// [Syncer] mediates every read and write against the automation backend
// ([Remote]). Fetch functions report failure through booleans or placeholder
// records and log the cause; they never return errors past their boundary.
//
// # Export
//
// [Exporter] turns an order into CSV-ready records. The preliminary export
// validates every listing-ready product and blocks the download when any
// product fails; the real stock export emits SKU and stock count only.
//
// # Error Handling
//
// Errors shown to users are mapped through [MapError] to a message, an
// action and a support code (NET, VAL, NAV, SYS, RATE, ERR families).
package core
