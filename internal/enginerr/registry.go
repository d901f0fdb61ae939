package enginerr

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Validation Errors (M100-M199)
	// ============================================

	"M101": {
		Category: CategoryValidation,
		Message:  "Missing required manifest field",
		Detail:   "The manifest is missing a required top-level field. Every manifest needs an id, a tenant id, a version, and a components array.",
		DocURL:   "https://maquette.dev/docs/errors/M101",
	},
	"M102": {
		Category: CategoryValidation,
		Message:  "Empty tenant identifier",
		Detail:   "The owning-tenant identifier is mandatory. An empty tenant id must be rejected before rendering, not passed into route generation.",
		DocURL:   "https://maquette.dev/docs/errors/M102",
	},
	"M103": {
		Category: CategoryValidation,
		Message:  "Duplicate component node id",
		Detail:   "Every node id must be unique within the manifest tree. Duplicate ids break interaction event routing and patch targeting.",
		DocURL:   "https://maquette.dev/docs/errors/M103",
	},
	"M104": {
		Category: CategoryValidation,
		Message:  "Unknown component type",
		Detail:   "The component type is not registered. Rendering will substitute a fallback placeholder for this node.",
		DocURL:   "https://maquette.dev/docs/errors/M104",
	},
	"M105": {
		Category: CategoryValidation,
		Message:  "Invalid manifest version",
		Detail:   "The manifest version must be a semantic version string (e.g. \"1.2.0\").",
		DocURL:   "https://maquette.dev/docs/errors/M105",
	},
	"M106": {
		Category: CategoryValidation,
		Message:  "Manifest failed validation",
		Detail:   "The manifest has fatal structural errors and cannot be rendered.",
		DocURL:   "https://maquette.dev/docs/errors/M106",
	},
	"M107": {
		Category: CategoryValidation,
		Message:  "Malformed manifest document",
		Detail:   "The manifest document could not be parsed.",
		DocURL:   "https://maquette.dev/docs/errors/M107",
	},
	"M108": {
		Category: CategoryValidation,
		Message:  "Component node missing id",
		Detail:   "Every component node needs a non-empty id unique within the manifest.",
		DocURL:   "https://maquette.dev/docs/errors/M108",
	},
	"M109": {
		Category: CategoryValidation,
		Message:  "Component node missing type",
		Detail:   "Every component node needs a non-empty type key.",
		DocURL:   "https://maquette.dev/docs/errors/M109",
	},

	// ============================================
	// Resolution Errors (M200-M299)
	// ============================================

	"M201": {
		Category: CategoryResolution,
		Message:  "Component not registered",
		Detail:   "No factory is registered for the requested (type, version) pair. The registry fails closed rather than guessing a compatible version.",
		DocURL:   "https://maquette.dev/docs/errors/M201",
	},
	"M202": {
		Category: CategoryResolution,
		Message:  "Component load failed",
		Detail:   "The lazy loader for this component returned an error.",
		DocURL:   "https://maquette.dev/docs/errors/M202",
	},
	"M203": {
		Category: CategoryResolution,
		Message:  "Component loader returned no factory",
		Detail:   "The lazy loader completed without error but produced a nil factory.",
		DocURL:   "https://maquette.dev/docs/errors/M203",
	},

	// ============================================
	// Render Errors (M300-M399)
	// ============================================

	"M301": {
		Category: CategoryRender,
		Message:  "Factory failed during build",
		Detail:   "The resolved factory returned an error while instantiating the component. The failure is isolated to this node.",
		DocURL:   "https://maquette.dev/docs/errors/M301",
	},
	"M302": {
		Category: CategoryRender,
		Message:  "Factory panicked during build",
		Detail:   "The resolved factory panicked while instantiating the component. The panic was recovered and isolated to this node.",
		DocURL:   "https://maquette.dev/docs/errors/M302",
	},

	// ============================================
	// Theme Errors (M400-M449)
	// ============================================

	"M401": {
		Category: CategoryTheme,
		Message:  "Theme token undefined",
		Detail:   "The token is undefined at every level of the inheritance chain. The factory's built-in default is used instead.",
		DocURL:   "https://maquette.dev/docs/errors/M401",
	},
	"M402": {
		Category: CategoryTheme,
		Message:  "Theme source fetch failed",
		Detail:   "The brand/asset token source returned an error. Resolution continues with the remaining chain levels.",
		DocURL:   "https://maquette.dev/docs/errors/M402",
	},

	// ============================================
	// Config Errors (M500-M549)
	// ============================================

	"M501": {
		Category: CategoryConfig,
		Message:  "Could not read project config",
		Detail:   "The maquette.json project file could not be read or parsed.",
		DocURL:   "https://maquette.dev/docs/errors/M501",
	},
	"M502": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A configuration value is out of range or malformed.",
		DocURL:   "https://maquette.dev/docs/errors/M502",
	},

	// ============================================
	// Storage Errors (M550-M599)
	// ============================================

	"M551": {
		Category: CategoryStorage,
		Message:  "Manifest not found",
		Detail:   "No manifest with the requested id and version exists in the store.",
		DocURL:   "https://maquette.dev/docs/errors/M551",
	},
	"M552": {
		Category: CategoryStorage,
		Message:  "Store operation failed",
		Detail:   "The storage backend returned an error.",
		DocURL:   "https://maquette.dev/docs/errors/M552",
	},

	// ============================================
	// Bundle Errors (M600-M649)
	// ============================================

	"M601": {
		Category: CategoryBundle,
		Message:  "Referenced asset missing",
		Detail:   "The manifest references a static asset that the asset source could not provide.",
		DocURL:   "https://maquette.dev/docs/errors/M601",
	},
	"M602": {
		Category: CategoryBundle,
		Message:  "Bundle write failed",
		Detail:   "The bundle archive could not be written.",
		DocURL:   "https://maquette.dev/docs/errors/M602",
	},
}

// Lookup returns the template for a code, if registered.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
