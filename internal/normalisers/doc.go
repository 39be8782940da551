// Package normalisers holds format-specific cleanup applied to material
// before it reaches the chunker.
package normalisers
