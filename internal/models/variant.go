package models

import (
	"errors"
	"fmt"
)

// ModelVariant selects which trained model (and therefore which class catalog)
// a prediction targets.
type ModelVariant string

const (
	SixClass     ModelVariant = "6-class"       // Banking complaint classifier, 6 categories
	ThreeClass   ModelVariant = "3-class"       // Banking complaint classifier, 3 categories
	HeartDisease ModelVariant = "heart-disease" // Binary heart disease risk model
)

var (
	// ErrUnknownVariant is returned when a model variant name is not recognised.
	ErrUnknownVariant = errors.New("unknown model variant")

	// ErrShapeContract is returned when a probability vector is missing or its
	// length disagrees with the class catalog of its variant.
	ErrShapeContract = errors.New("probability vector does not match class catalog")
)

// Variants lists every known variant in display order.
var Variants = []ModelVariant{SixClass, ThreeClass, HeartDisease}

// ClassCatalog maps a probability-vector index to a label, per variant.
var ClassCatalog = map[ModelVariant][]string{
	SixClass:     {"Class A", "Class B", "Class C", "Class D", "Class E", "Class F"},
	ThreeClass:   {"Class X", "Class Y", "Class Z"},
	HeartDisease: {"No Disease", "Disease"},
}

// ParseVariant converts a user supplied name into a ModelVariant.
func ParseVariant(name string) (ModelVariant, error) {
	v := ModelVariant(name)
	if _, ok := ClassCatalog[v]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	return v, nil
}

// Classes returns a copy of the variant's class catalog. Unknown variants
// yield nil.
func (v ModelVariant) Classes() []string {
	labels, ok := ClassCatalog[v]
	if !ok {
		return nil
	}
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

// IsComplaintModel reports whether the variant is one of the complaint
// classifiers.
func (v ModelVariant) IsComplaintModel() bool {
	return v == SixClass || v == ThreeClass
}

func (v ModelVariant) String() string {
	return string(v)
}
