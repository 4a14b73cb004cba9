package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrLoginAlreadyExists is returned when an attempt to register a new user
	// fails because a user with the same login already exists in the database.
	ErrLoginAlreadyExists = errors.New("login already exists")

	// ErrNoUserWasFound is returned when a query expected to match at least one
	// user record produces an empty result set.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrIndexConflict is returned by [RecordRepository.AddRecords] and
	// [LocalRecordRepository.InsertRemote] when a record arrives for a (host, tag, idx)
	// slot that already holds a *different* record id. A conflict on the
	// same id is not an error: inserts are idempotent by id.
	ErrIndexConflict = errors.New("index conflict: slot already holds a different record")

	// ErrIoFailure names a storage-layer I/O failure (disk, network,
	// driver-level error) that is not a recognised domain condition. The
	// repositories in this package do not wrap their errors with it:
	// backing-store failures surface as the low-level errors below
	// ([ErrExecutingQuery], [ErrExecutingStatement], ...).
	ErrIoFailure = errors.New("store io failure")

	// ErrProtocolFailure names a violation of the store's usage contract,
	// such as a non-contiguous range. No repository in this package returns
	// it: gapped push batches are rejected by the record validator and
	// gapped fetched batches by the sync engine, each with its own error.
	ErrProtocolFailure = errors.New("store protocol failure")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrPreparingStatement is returned when a SQL statement cannot be
	// prepared (e.g. syntax error or connection issue).
	ErrPreparingStatement = errors.New("failed to prepare statement")

	// ErrExecutingStatement is returned when executing a prepared DML
	// statement (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
