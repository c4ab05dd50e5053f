package services

import "errors"

// Dataset service errors
var (
	ErrDatasetNotLoaded = errors.New("dataset not loaded")
	ErrNotTransformed   = errors.New("dataset not transformed")
)
