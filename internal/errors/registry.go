package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://compose.vango.dev/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E100-E119)
	// ============================================

	"E101": {
		Category: CategoryRuntime,
		Message:  "Cannot make a nil record reactive",
		Detail:   "Reactive was called with a nil map. Only the root record must be non-nil; nested nil maps are stored as plain values.",
		DocURL:   docBase + "E101",
	},
	"E102": {
		Category: CategoryRuntime,
		Message:  "Hook order changed",
		Detail:   "Hooks (compose.Use, UseMemo, UseForceUpdate) were called in a different order than on the previous render. Call hooks unconditionally, in the same order, on every render.",
		DocURL:   docBase + "E102",
	},
	"E103": {
		Category: CategoryRuntime,
		Message:  "Scheduler used from another goroutine",
		Detail:   "A host.Scheduler and the components it mounts belong to the goroutine that created them. Send work to that goroutine instead of calling the scheduler directly.",
		DocURL:   docBase + "E103",
	},
	"E104": {
		Category: CategoryRuntime,
		Message:  "Invalid watch source",
		Detail:   "Watch accepts a func() effect, a func() any getter or a *reactive.Ref. A getter or ref source also needs a callback.",
		DocURL:   docBase + "E104",
	},
	"E105": {
		Category: CategoryRuntime,
		Message:  "Update storm",
		Detail:   "Rendering kept requesting further updates past the pass limit of a single flush. A render or watcher is probably writing state it also reads.",
		DocURL:   docBase + "E105",
	},

	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The compose.json or compose.yaml file could not be read or parsed.",
		DocURL:   docBase + "E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Unknown example component",
		Detail:   "The configuration names an example component that does not exist. Known components are reactive, ref and watch.",
		DocURL:   docBase + "E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The configured port number must be between 1 and 65535.",
		DocURL:   docBase + "E122",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid click count",
		Detail:   "The number of simulated clicks must not be negative.",
		DocURL:   docBase + "E123",
	},
	"E124": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		Detail:   "Configuration files must end in .json, .yaml or .yml.",
		DocURL:   docBase + "E124",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
		DocURL:   docBase + "E140",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Invalid argument",
		Detail:   "A command line argument could not be parsed.",
		DocURL:   docBase + "E141",
	},

	// ============================================
	// Protocol Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryProtocol,
		Message:  "Invalid message format",
		Detail:   "The received message is not a JSON object with component and action fields.",
		DocURL:   docBase + "E160",
	},
	"E161": {
		Category: CategoryProtocol,
		Message:  "Unknown component",
		Detail:   "The message names a component that is not mounted in this session.",
		DocURL:   docBase + "E161",
	},
	"E162": {
		Category: CategoryProtocol,
		Message:  "Unknown action",
		Detail:   "The component does not expose the requested action.",
		DocURL:   docBase + "E162",
	},
	"E163": {
		Category: CategoryProtocol,
		Message:  "WebSocket upgrade failed",
		Detail:   "The HTTP connection could not be upgraded to a WebSocket.",
		DocURL:   docBase + "E163",
	},
}
