// Package logging provides file-based structured logging with rotation.
// With --debug, or always in MCP mode, JSON logs go to ~/.iconify/logs/
// so that stdout stays free for command output and the MCP protocol.
package logging
