// Package audit records store operations in an optional JSON Lines log.
//
// Logging is enabled by setting audit-log-path in the project config. Each
// entry has a UUID, a UTC timestamp with microseconds, the OS user, the
// operation and operation specific details such as the store files, the
// algorithm and where the key came from. Variable values are never written.
//
// # Usage
//
//	entry := audit.NewEntry(audit.OpEncrypt)
//	entry.Files = []string{storePath}
//	audit.Log(cfg.AuditLogPath, entry)
//
// # Failure Handling
//
// Logging is best effort. Failures to write are ignored so that a read-only
// or full disk never blocks encrypting or decrypting.
package audit
