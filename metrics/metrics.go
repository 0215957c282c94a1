// Package metrics defines the instrumentation surface for session,
// transaction and catalog events.
package metrics

import "time"

type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}

// Event names recorded by the library.
const (
	EventSessionConnected    = "session_connected"
	EventSessionDisconnected = "session_disconnected"
	EventAccountChanged      = "account_changed"
	EventChainChanged        = "chain_changed"
	EventTxSubmitted         = "tx_submitted"
	EventTxConfirmed         = "tx_confirmed"
	EventTxFailed            = "tx_failed"
	EventCatalogItemDropped  = "catalog_item_dropped"
)
