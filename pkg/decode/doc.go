// Package decode validates raw, JSON-shaped values against decoder
// descriptions.
//
// Decoders are plain data. That matters for two callers: event handlers,
// where two renders producing structurally equal decoders must not cause a
// listener update, and incoming ports and program flags, where a value from
// outside the program is checked before it reaches application code.
//
//	d := decode.Field("target", decode.Field("value", decode.String()))
//	v, err := decode.Run(d, payload)
//
// Raw values are what encoding/json produces when decoding into any:
// map[string]any, []any, string, float64, bool and nil. Go integer types are
// accepted as well.
package decode
