// Package t212sync synchronizes a Trading 212 account history into a personal-finance
// ledger.
//
// The broker only exposes history through asynchronous CSV exports: a report is
// requested for a time range, generated server side, and eventually downloadable from a
// temporary link. The packages of this module split that work as follows:
//   - t212: the HTTP client of the export API, including its rate-limit recovery.
//   - history: turns "rows for this range" into export jobs, waits for them and parses
//     the CSV, walking backward in fixed windows on the first synchronization.
//   - this package: the domain types (Row, Transaction, Amount) and Normalize, which maps
//     broker rows into ledger transactions.
//   - ledger, config, importer: the ledger sink, the persisted configuration and the
//     orchestration of a single run.
//
// This package serves as the foundational logic for the `t212sync` command-line tool.
package t212sync
