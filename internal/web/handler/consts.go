package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path the route group.
	RootPath = "/"

	// TemplateError renders error pages.
	TemplateError = "error"

	// CSRFField is the form field carrying the CSRF token.
	CSRFField = "csrf_token"

	// CSRFContextKey is the fiber.Locals key the CSRF middleware stores the token under.
	CSRFContextKey = "csrf"

	// ErrNilACDFatalLogMsg is used if app, config or a dependency is nil.
	ErrNilACDFatalLogMsg = "app, cfg or a handler dependency is nil"
)
