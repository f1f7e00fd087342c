package cli

import "errors"

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrCapacityInvalid    = errors.New("capacity must be between 0 and 1048576")
	ErrModeInvalid        = errors.New("mode must be strict, relaxed or unrestricted")
	ErrUnknownCommand     = errors.New("unknown command")
	ErrUsage              = errors.New("wrong number of arguments")
	ErrBadSlot            = errors.New("slot must be an integer")
	ErrNoKeyHeld          = errors.New("no key held for slot")
	ErrNoSuchCopy         = errors.New("no such key copy")
	ErrCopiesUnsupported  = errors.New("key copies are only available in relaxed mode")
	ErrEmptySlot          = errors.New("slot is empty")
)
