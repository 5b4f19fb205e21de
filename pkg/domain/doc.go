// Package domain contains the core domain entities shared by the lead
// finder: businesses discovered on the map, the outcome of probing their
// websites, and the leads derived from both. These types are free of
// infrastructure concerns so storage, export and the HTTP API can share them.
package domain
