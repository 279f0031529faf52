package errors

// Convenience functions for common error patterns

// Bootstrap errors

func PermissionDenied(path string) *VDMError {
	return New(CategoryPermission, SeverityFatal, "no permission to write to the state directory").
		WithContext("path", path)
}

func StateDirCreateFailed(path string, cause error) *VDMError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "state directory creation failed").
		WithContext("path", path)
}

func StateDirStatFailed(path string, cause error) *VDMError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "state directory check failed").
		WithContext("path", path)
}

func StateDirNotDirectory(path string) *VDMError {
	return New(CategoryFileSystem, SeverityFatal, "state path exists but is not a directory").
		WithContext("path", path)
}

func InstallRootNotFound(candidates []string) *VDMError {
	return New(CategoryLoad, SeverityFatal, "no usable install root found").
		WithContext("candidates", candidates)
}

func VerbManifestInvalid(path string, cause error) *VDMError {
	return Wrap(cause, CategoryLoad, SeverityFatal, "verb manifest could not be loaded").
		WithContext("path", path)
}

// Configuration errors

func ConfigParseFailed(path string, cause error) *VDMError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration file parse failed").
		WithContext("path", path)
}

func ConfigReadFailed(path string, cause error) *VDMError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration file read failed").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *VDMError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Runtime errors

func StateStoreFailed(operation string, cause error) *VDMError {
	return Wrap(cause, CategoryState, SeverityError, "state catalog operation failed").
		WithContext("operation", operation)
}

func DaemonStartFailed(cause error) *VDMError {
	return Wrap(cause, CategoryDaemon, SeverityFatal, "daemon startup failed")
}

func ValidationError(message string) *VDMError {
	return New(CategoryValidation, SeverityError, message)
}

func InternalError(message string) *VDMError {
	return New(CategoryInternal, SeverityError, message)
}
