// Package driving provides interfaces exposed to external actors (primary/inbound ports).
package driving
