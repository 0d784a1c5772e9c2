// Package siteindex builds and serves a semantic content index over a
// website or a static build output. It crawls pages (or walks a local build
// tree), normalizes them into plain-text page records, splits those into
// overlapping chunks, embeds the chunks via an external model service, and
// answers hybrid (vector + keyword) search and content-recommendation
// queries against the resulting index.
//
// This package contains domain types, interfaces, and pure domain logic
// following Ben Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., goquery/,
// chromem/, sqlite/, ollama/). The reindex pipeline lives in index/.
package siteindex
