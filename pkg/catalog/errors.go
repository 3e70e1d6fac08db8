package catalog

import "errors"

var (
	// ErrDuplicateName is returned by InsertClient when name is already
	// registered to another client.
	ErrDuplicateName = errors.New("catalog: client name already registered")

	// ErrUnknownClient is returned by any operation keyed on a client id
	// that has no matching row.
	ErrUnknownClient = errors.New("catalog: unknown client id")

	// ErrUnknownFile is returned by MarkFileVerified when no file row
	// matches (owner_id, file_name).
	ErrUnknownFile = errors.New("catalog: unknown file")
)
