package ports

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrCorrupt  = errors.New("corrupt record")
)

// CorruptRecordsError names stored records that could not be decoded. List
// methods return it alongside the records that did decode.
type CorruptRecordsError struct {
	Kind string
	IDs  []string
}

func (e *CorruptRecordsError) Error() string {
	return fmt.Sprintf("%d corrupt %s record(s): %s", len(e.IDs), e.Kind, strings.Join(e.IDs, ","))
}

func (e *CorruptRecordsError) Unwrap() error {
	return ErrCorrupt
}
