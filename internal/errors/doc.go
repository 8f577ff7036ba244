// Package errors provides coded, formatted error messages for the compose
// tools.
//
// Every error has a code (e.g. "E101") registered with a category, a short
// message, a longer explanation and a documentation link. Codes group by
// range:
//   - E100-E119: runtime (reactive state, hooks, scheduler)
//   - E120-E139: configuration (compose.json / compose.yaml)
//   - E140-E159: command line
//   - E160-E179: live session protocol
//
// # Usage
//
//	err := errors.New("E122").
//	    WithDetail("port 70000 is out of range").
//	    WithSuggestion("Set server.port between 1 and 65535")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E122: Invalid port number
//	//
//	//   port 70000 is out of range
//	//
//	//   Hint: Set server.port between 1 and 65535
//	//
//	//   Learn more: https://compose.vango.dev/errors/E122
//
// Panics raised by pkg/reactive and pkg/host carry the same codes in their
// message ("[COMPOSE E102] ..."); Recover turns such a panic value back into
// an *Error.
package errors
