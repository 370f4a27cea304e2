// Package errors provides structured, loud errors for the failures vela
// treats as fatal: configuration mistakes found at startup and interpreter
// invariant violations.
//
// Recoverable conditions never reach this package. Event payloads that do
// not decode are dropped, structural tree changes become redraws, and a task
// failing without a handler simply ends its process.
//
// # Error Categories
//
//   - config: startup configuration errors (duplicate effect managers,
//     flags handed to a program that takes none, missing flags decoder)
//   - interpreter: scheduler invariant violations (unknown task kinds)
//   - decode: values from outside the program that fail validation
//   - runtime: failures of a running program
//   - cli: command line errors
//
// # Error Codes
//
// Each error has a unique code (e.g., "E101") that maps to a short message,
// a detailed explanation and a documentation URL.
//
// # Usage
//
//	err := errors.New("E101").
//	    WithDetail(`flags value: {"start": 3}`).
//	    WithSuggestion("Set FlagsDecoder on the program config")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E101: Flags passed to a program that takes none
//	//
//	//   flags value: {"start": 3}
//	//
//	//   Hint: Set FlagsDecoder on the program config
package errors
