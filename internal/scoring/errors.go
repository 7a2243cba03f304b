package scoring

import "errors"

var (
	ErrModelNotLoaded = errors.New("model not loaded")
	ErrInvalidModel   = errors.New("invalid model file")
)
