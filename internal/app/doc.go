// Package app wires gemnote together and owns the connection policy.
//
// # Components
//
//   - app.go: Open builds a Runtime (config, logger, entry store, state,
//     connector, clipboard); Run and RunTUI start the TUI.
//   - connector.go: Connector finds the companion API, remembers the
//     endpoint, selects the space and type, and sends entries as notes.
//   - poller.go: StartReconnector keeps the connection alive in the
//     background with exponential backoff.
//   - capture.go: Capture turns clipboard changes into entries and, when
//     asked, sends them straight away.
//
// # Connection policy
//
//	Connect()
//	   ├── cached base_url (GEMNOTE_BASE_URL wins) ── ListSpaces ok ──> connected
//	   └── otherwise: scanning ── LocalSubnet ── Sweeper.Sweep ──> connected
//	                                                         └──> disconnected
//
// Once connected the endpoint is saved to prefs, the saved space is
// reselected (or the first space is picked) and the space's object types are
// loaded. A 401, 403 or 404 from any call, or a transport failure, drops the
// state back to disconnected; the reconnector then retries.
package app
