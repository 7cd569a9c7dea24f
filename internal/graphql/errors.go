package graphql

import (
	"errors"
	"fmt"

	"github.com/tokligence/moviegraph/internal/catalog"
)

const (
	codeNotFound     = "NOT_FOUND"
	codeStorageError = "STORAGE_ERROR"
)

// resolverError is surfaced to clients with an extensions.code entry.
type resolverError struct {
	code string
	msg  string
	err  error
}

func (e *resolverError) Error() string { return e.msg }

func (e *resolverError) Unwrap() error { return e.err }

// Extensions implements the graphql-go ResolverError interface.
func (e *resolverError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

func notFound(kind string, id int64) error {
	return &resolverError{
		code: codeNotFound,
		msg:  fmt.Sprintf("%s %d does not exist", kind, id),
		err:  catalog.ErrNotFound,
	}
}

// storageError logs the underlying failure and hands the client a stable message.
func (r *Resolver) storageError(op string, err error) error {
	r.logger.Error("store operation failed", "op", op, "err", err)
	return &resolverError{
		code: codeStorageError,
		msg:  fmt.Sprintf("%s: storage failure", op),
		err:  err,
	}
}

func isUnknownActor(err error) bool {
	return errors.Is(err, catalog.ErrUnknownActor)
}
