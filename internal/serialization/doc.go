// Package serialization saves and restores state dicts in SafeTensors format.
//
// Layout:
//
//	[8 bytes: header size (uint64 LE)]
//	[header: JSON, tensor name -> {dtype, shape, data_offsets}]
//	[tensor data: little-endian F64, sorted by name]
//
// The header's __metadata__ map always carries a "sha256" entry with the
// checksum of the data section, verified on read.
//
// Example:
//
//	err := serialization.WriteSafeTensors("model.safetensors", model.StateDict(), nil)
//	...
//	state, meta, err := serialization.ReadSafeTensors("model.safetensors", tensor.CPU)
//	err = model.LoadStateDict(state)
package serialization
