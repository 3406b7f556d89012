package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Components wrap causes with one of these so callers can
// classify failures with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrStorage    = errors.New("storage error")
	ErrUpload     = errors.New("upload error")
	ErrGeneration = errors.New("generation error")
)

// ErrPromptRequired is returned when neither a prompt nor a file was sent.
var ErrPromptRequired = fmt.Errorf("%w: prompt is required", ErrValidation)
