package audio

import "errors"

var (
	// ErrCapacityExceeded is returned by Play when every slot of a scene is
	// in use or waiting to be reclaimed.
	ErrCapacityExceeded = errors.New("scene capacity exceeded")

	// ErrStaleHandle is returned by operations on a handle whose signal has
	// finished and been reclaimed.
	ErrStaleHandle = errors.New("signal no longer live")

	// ErrTypeMismatch is returned by Control when no signal in the handle's
	// chain exposes the requested control type.
	ErrTypeMismatch = errors.New("control type mismatch")
)
