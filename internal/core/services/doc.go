// Package services implements the core business logic behind the
// driving ports: ingestion, question answering, catalog browsing and
// document management.
package services
