// Package codec translates between the flat numeric buffers of the ABI and
// the container representation the foreign module consumes.
//
// Packing regroups flat 3N position sequences into N ordered triples and the
// row-major 9-element cell into three rows; unpacking flattens the returned
// force triples back into a fresh 3N sequence, preserving atom index order.
// The wire format is JSON with a fixed field set; the non-periodic variant
// carries cell and pbc as explicit nulls rather than omitting them.
//
// The codec checks counts and nothing else. Value validation is the foreign
// module's concern.
package codec
