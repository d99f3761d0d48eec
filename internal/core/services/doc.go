// Package services implements the driving port interfaces.
// Services contain the core business logic: the ingestion pipeline,
// retrieval, answer generation, and settings management. They
// orchestrate calls to driven ports (adapters).
//
// Services are pure Go with no CGO.
package services
