package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E099)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Program already stopped",
		Detail:   "Messages and port values sent after Stop are discarded.",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Scheduler loop already running",
		Detail:   "A Loop driver runs on exactly one goroutine. Run was called a second time.",
	},

	// ============================================
	// Configuration Errors (E100-E139)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Duplicate effect manager",
		Detail:   "Two effect managers were registered under the same home. Each effect kind and each port name must be registered exactly once.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Flags passed to a program that takes none",
		Detail:   "The program was initialized with flags but it does not declare a flags decoder or RequiresFlags.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Program requires flags but has no flags decoder",
		Detail:   "RequiresFlags is set, so the program must also set FlagsDecoder to validate the flags it is given.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Flags failed to decode",
		Detail:   "The flags value does not match the program's flags decoder.",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file could not be read or contains an invalid value.",
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Incomplete program",
		Detail:   "A program needs Init, Update and a Renderer.",
	},
	"E106": {
		Category: CategoryConfig,
		Message:  "Unknown effect manager",
		Detail:   "An effect refers to a home that no registered manager owns.",
	},

	// ============================================
	// Interpreter Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryInterpreter,
		Message:  "Unknown task kind",
		Detail:   "The scheduler met a task it cannot step. Tasks must be built with the task package constructors.",
	},
	"E141": {
		Category: CategoryInterpreter,
		Message:  "Nil task",
		Detail:   "A continuation or handler returned a nil task.",
	},

	// ============================================
	// Decode Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryDecode,
		Message:  "Port value rejected",
		Detail:   "A value sent into an incoming port does not match the port's decoder.",
	},

	// ============================================
	// CLI Errors (E180-E199)
	// ============================================

	"E180": {
		Category: CategoryCLI,
		Message:  "Unknown demo",
		Detail:   "The requested demo program does not exist.",
	},
	"E181": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The live server stopped with an error.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
