package errors

// Convenience functions for common error patterns

// Name resolution errors

func InvalidName(reason string) *PasteError {
	return New(CategoryName, SeverityFatal, "invalid paste name").
		WithContext("reason", reason)
}

// Rendering errors

func RenderFailed(cause error) *PasteError {
	return Wrap(cause, CategoryRender, SeverityFatal, "rendering failed")
}

func MalformedDocument(detail string) *PasteError {
	return New(CategoryRender, SeverityFatal, "highlighter output malformed").
		WithContext("detail", detail)
}

// Publish errors

func PublishFailed(remote string, cause error) *PasteError {
	return Wrap(cause, CategoryPublish, SeverityFatal, "remote transfer failed").
		WithContext("remote", remote)
}

func StagingFailed(operation string, cause error) *PasteError {
	return Wrap(cause, CategoryPublish, SeverityFatal, "staging operation failed").
		WithContext("operation", operation)
}

// Listing errors

func ListFailed(remote string, cause error) *PasteError {
	return Wrap(cause, CategoryList, SeverityFatal, "remote listing failed").
		WithContext("remote", remote)
}

// Config errors

func ConfigNotFound(path string) *PasteError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(field, reason string) *PasteError {
	return New(CategoryConfig, SeverityFatal, "configuration invalid").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Network errors

func NetworkError(url string, cause error) *PasteError {
	return WrapRetryable(cause, CategoryNetwork, SeverityWarning, "network request failed").
		WithContext("url", url)
}

// Internal errors

func InternalError(message string, cause error) *PasteError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
