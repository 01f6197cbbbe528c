// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package history

import "fmt"

// Well-known info keys written by rollout drivers.
//
// The set of keys is open (drivers may choose their own stable strings), but
// these are the ones the bundled drivers and metrics helpers use.
const (
	// KeyStateValue is the value estimate V(s) for the transition's state.
	KeyStateValue = "V_s"

	// KeyNextStateValue is the value estimate V(s') for the next state.
	// Usually only present on the last transition of an episode or window,
	// where it serves as the bootstrap value.
	KeyNextStateValue = "V_s_next"

	// KeyLogProb is the log-probability of the chosen action.
	KeyLogProb = "log_prob"

	// KeyEntropy is the policy entropy at the transition's state.
	KeyEntropy = "entropy"

	// KeyEpisodeID is a trajectory-level episode identifier.
	KeyEpisodeID = "episode_id"
)

// ValueKind identifies which variant a Value holds.
type ValueKind int

const (
	// KindScalar is a single float64.
	KindScalar ValueKind = iota

	// KindVector is a []float64.
	KindVector

	// KindOpaque is an arbitrary external handle the core never interprets
	// (e.g. an identifier string or a framework tensor).
	KindOpaque
)

// String returns the human-readable name of the kind.
func (k ValueKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindVector:
		return "vector"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Value is a tagged union of the auxiliary value kinds the data model
// accepts on its info side channels: scalar, vector, or opaque handle.
//
// The variant is fixed at construction; accessors use the comma-ok form.
// The zero Value is a scalar 0.
type Value struct {
	kind   ValueKind
	scalar float64
	vector []float64
	opaque any
}

// Scalar wraps a float64 as a Value.
func Scalar(v float64) Value {
	return Value{kind: KindScalar, scalar: v}
}

// Vector wraps a []float64 as a Value. The slice is not copied.
func Vector(v []float64) Value {
	return Value{kind: KindVector, vector: v}
}

// Opaque wraps an arbitrary handle as a Value.
func Opaque(v any) Value {
	return Value{kind: KindOpaque, opaque: v}
}

// Kind reports which variant the value holds.
func (v Value) Kind() ValueKind {
	return v.kind
}

// Scalar returns the scalar variant, or false if the value holds another
// kind.
func (v Value) Scalar() (float64, bool) {
	return v.scalar, v.kind == KindScalar
}

// Vector returns the vector variant, or false if the value holds another
// kind.
func (v Value) Vector() ([]float64, bool) {
	return v.vector, v.kind == KindVector
}

// Opaque returns the opaque variant, or false if the value holds another
// kind.
func (v Value) Opaque() (any, bool) {
	return v.opaque, v.kind == KindOpaque
}

// Scalars unpacks a slice of scalar Values into a []float64.
//
// Returns ErrValueKind if any element holds a non-scalar variant. This is
// the usual bridge from stacked per-transition info (e.g. V_s) to the
// numeric sequences the metrics functions consume.
func Scalars(values []Value) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		s, ok := v.Scalar()
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %s, want scalar", ErrValueKind, i, v.Kind())
		}
		out[i] = s
	}
	return out, nil
}

// Info is a mapping from string keys to auxiliary Values.
//
// Keys are unique: re-adding an existing key is an error, reading an absent
// key is an error. Insertion order is irrelevant.
type Info map[string]Value

// Add inserts a key. Returns ErrDuplicateKey if the key is already present.
func (in Info) Add(key string, v Value) error {
	if _, ok := in[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	in[key] = v
	return nil
}

// Get reads a key. Returns ErrMissingKey if the key was never added.
func (in Info) Get(key string) (Value, error) {
	v, ok := in[key]
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	return v, nil
}
