// Package batch provides common utilities for batch operations across MCP
// tools.
//
// This package includes helpers for:
//   - Parsing parameters that accept both single values and arrays
//   - Rendering per-item batch outcomes in a consistent JSON structure
package batch
