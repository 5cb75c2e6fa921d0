package catalog

import "errors"

// Sentinel errors for catalog configuration.
var (
	ErrInvalidScale        = errors.New("invalid rating scale")
	ErrDuplicateID         = errors.New("duplicate identifier")
	ErrDegenerateAxisCount = errors.New("fewer than 3 competencies configured")
	ErrInvalidLevel        = errors.New("level description outside rating scale")
	ErrEmptyID             = errors.New("empty identifier")
	ErrLoadCatalog         = errors.New("load catalog")
)
