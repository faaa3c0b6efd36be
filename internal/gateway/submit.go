package gateway

import (
	"context"
	"errors"
)

// Submit writes the modal's current fields. Validation errors (ErrInvalid)
// and write errors both leave the modal open and populated; only a
// successful write clears and closes it. live is consulted after the write;
// when it reports false the owner has shut down and the modal is left
// untouched.
func Submit[F any](ctx context.Context, m *Modal[F], write func(context.Context, F) error, live func() bool) error {
	fields := m.State().Fields

	if err := write(ctx, fields); err != nil {
		return err
	}

	if live != nil && !live() {
		return nil
	}
	m.Close()
	return nil
}

// IsInvalid reports whether err is a validation failure.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}
