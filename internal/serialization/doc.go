// Package serialization saves and loads named shaped arrays in the SafeTensors format.
//
// File structure:
//
//	[8 bytes: header size (uint64 LE)]
//	[header: JSON object, one entry per array plus "__metadata__"]
//	[array data: little-endian scalars, arrays in alphabetical order]
//
// Two metadata keys are reserved:
//   - "shaped.checksum": hex SHA-256 of the data section, verified on load
//   - "shaped.canonical_zero": JSON list of the names stored as the canonical
//     zero; those entries are written as a single 0 of shape [1] so the file
//     stays readable by other SafeTensors tools, and are restored as Zero.
//
// Example usage:
//
//	// Save optimizer state
//	if err := serialization.Save(path, sgd.StateDict(), map[string]string{"optimizer": "sgd"}); err != nil {
//	    return err
//	}
//
//	// Load it back
//	state, metadata, err := serialization.Load[float32](path)
//	if err != nil {
//	    return err
//	}
//	err = sgd.LoadStateDict(state)
package serialization
