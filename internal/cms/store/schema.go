package store

import _ "embed"

// Schema is the DDL for the authorisation tables. Integration tests apply it
// directly; deployments run it through their migration tooling.
//
//go:embed schema.sql
var Schema string
