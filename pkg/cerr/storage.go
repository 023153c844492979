package cerr

import (
	"errors"
	"fmt"

	"github.com/weidustudio/studio/pkg/storage"
)

func WrapStorageReadError(target string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return NewError(NotFound, fmt.Sprintf("%s not found", target), err)
	}
	return NewError(Internal, "server error", fmt.Errorf("failed to read %s: %w", target, err))
}

func WrapStorageWriteError(target string, err error) error {
	return NewError(Internal, "server error", fmt.Errorf("failed to write %s: %w", target, err))
}

func WrapStorageDeleteError(target string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return NewError(NotFound, fmt.Sprintf("%s not found", target), err)
	}
	return NewError(Internal, "server error", fmt.Errorf("failed to delete %s: %w", target, err))
}

// WrapDBError maps a relational store failure; a missing row is reported
// by callers explicitly, so everything here is a server fault.
func WrapDBError(op, target string, err error) error {
	return NewError(Internal, "server error", fmt.Errorf("failed to %s %s: %w", op, target, err))
}
