package truss

import "errors"

var (
	// ErrInvalidGeometry is returned for members whose endpoints coincide
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrInvalidMaterial is returned for non-positive elasticity or area
	ErrInvalidMaterial = errors.New("invalid material")

	// ErrNoMaterial is returned when a member reaches assembly without a material
	ErrNoMaterial = errors.New("member has no material")
)
