// Package common holds the helpers shared by every MCP tool package:
// account-hint resolution and the instrumented handler wrappers that feed
// tool and provider metrics plus audit logging.
package common
