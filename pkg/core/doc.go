// Package core defines the shared language of the aactmcp system.
//
// This package contains:
//   - Response types returned by the tool surface (TableInfo, ColumnInfo, QueryResult, InsightResponse)
//   - The dynamic Row shape produced by data store adapters
//   - Adapter configuration and statement types
//   - The error taxonomy (InvalidArgument, RejectedQuery, QueryExecutionFailed, DataUnavailable)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
