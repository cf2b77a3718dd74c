// Package serialization stores named float64 tensors in the SafeTensors format.
//
// File layout:
//
//	[8 bytes: header size N (uint64 LE)]
//	[N bytes: JSON header]
//	[tensor data: little-endian float64, tensors in alphabetical order]
//
// The JSON header maps every tensor name to {"dtype": "F64", "shape": [r, c],
// "data_offsets": [start, end]} and carries string metadata under
// "__metadata__". The writer adds a SHA-256 checksum of the data section to
// the metadata; the reader validates it together with names and offsets.
//
// Example usage:
//
//	// Save
//	err := serialization.WriteSafeTensors("model.safetensors", stack.StateDict(), map[string]string{
//	    "layers": "2",
//	})
//
//	// Load
//	tensors, metadata, err := serialization.ReadSafeTensors("model.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = stack.LoadStateDict(tensors)
package serialization
