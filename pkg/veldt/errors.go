package veldt

import "github.com/veldtdb/veldt/internal/merr"

// ErrMissingDatabaseURL is returned by New when no connection string was
// provided and the client is not files-only.
var ErrMissingDatabaseURL = merr.New(merr.ErrInvalidConfig, "database_url is required").
	WithHelp("Set database_url in veldt.yaml, the DATABASE_URL environment variable, or pass --database-url.")

// ErrNoDatabase is returned by database-backed methods on files-only
// clients.
var ErrNoDatabase = merr.New(merr.ErrInvalidConfig, "client has no database connection").
	WithHelp("Create the client with WithDatabaseURL instead of WithFilesOnly.")

// ErrNoDialect is returned when SQL rendering is requested on a
// files-only client that was created without a dialect.
var ErrNoDialect = merr.New(merr.ErrInvalidConfig, "no dialect configured for SQL rendering").
	WithHelp("Pass WithDialect alongside WithFilesOnly to render SQL offline.")
