package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "output.ext")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidDialogBackends returns the list of selectable picker backends
func ValidDialogBackends() []string {
	return []string{"zenity", "kdialog", "osascript", "powershell"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateModel()...)
	errors = append(errors, c.validateEditor()...)
	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateLauncher()...)
	errors = append(errors, c.validateDialog()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateTUI()...)

	return errors
}

func (c *Config) validateModel() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Model.Name) == "" {
		errors = append(errors, ValidationError{
			Field:   "model.name",
			Value:   c.Model.Name,
			Message: "must not be empty",
		})
	}
	if strings.TrimSpace(c.Model.APIKeyEnv) == "" {
		errors = append(errors, ValidationError{
			Field:   "model.api_key_env",
			Value:   c.Model.APIKeyEnv,
			Message: "must name an environment variable",
		})
	}
	if c.Model.BaseURL != "" && !strings.HasPrefix(c.Model.BaseURL, "http://") && !strings.HasPrefix(c.Model.BaseURL, "https://") {
		errors = append(errors, ValidationError{
			Field:   "model.base_url",
			Value:   c.Model.BaseURL,
			Message: "must be an http or https URL",
		})
	}

	const maxTimeoutSeconds = 600
	if c.Model.TimeoutSeconds < 0 || c.Model.TimeoutSeconds > maxTimeoutSeconds {
		errors = append(errors, ValidationError{
			Field:   "model.timeout_seconds",
			Value:   c.Model.TimeoutSeconds,
			Message: fmt.Sprintf("must be between 0 and %d", maxTimeoutSeconds),
		})
	}

	return errors
}

func (c *Config) validateEditor() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Editor.DefaultFilename) == "" {
		errors = append(errors, ValidationError{
			Field:   "editor.default_filename",
			Value:   c.Editor.DefaultFilename,
			Message: "must not be empty",
		})
	}
	if strings.ContainsAny(c.Editor.DefaultFilename, `/\`) {
		errors = append(errors, ValidationError{
			Field:   "editor.default_filename",
			Value:   c.Editor.DefaultFilename,
			Message: "must be a bare filename",
		})
	}

	for i, f := range c.Editor.Filters {
		field := fmt.Sprintf("editor.filters[%d]", i)
		if strings.TrimSpace(f.Name) == "" {
			errors = append(errors, ValidationError{Field: field + ".name", Value: f.Name, Message: "must not be empty"})
		}
		if len(f.Extensions) == 0 {
			errors = append(errors, ValidationError{Field: field + ".extensions", Value: f.Extensions, Message: "must list at least one extension"})
		}
		for _, ext := range f.Extensions {
			if strings.HasPrefix(ext, ".") || strings.ContainsAny(ext, ` /\|`) {
				errors = append(errors, ValidationError{
					Field:   field + ".extensions",
					Value:   ext,
					Message: `must be a bare extension like "nl" or "*"`,
				})
			}
		}
	}

	return errors
}

func (c *Config) validateOutput() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Output.Dir) == "" {
		errors = append(errors, ValidationError{
			Field:   "output.dir",
			Value:   c.Output.Dir,
			Message: "must not be empty",
		})
	}
	if !strings.HasPrefix(c.Output.Ext, ".") || len(c.Output.Ext) < 2 {
		errors = append(errors, ValidationError{
			Field:   "output.ext",
			Value:   c.Output.Ext,
			Message: `must start with "." (e.g. ".py")`,
		})
	}
	if strings.ContainsAny(c.Output.Suffix, `/\`) {
		errors = append(errors, ValidationError{
			Field:   "output.suffix",
			Value:   c.Output.Suffix,
			Message: "must not contain path separators",
		})
	}

	return errors
}

func (c *Config) validateLauncher() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Launcher.Terminal) == "" {
		errors = append(errors, ValidationError{
			Field:   "launcher.terminal",
			Value:   c.Launcher.Terminal,
			Message: "must not be empty",
		})
	}
	if strings.TrimSpace(c.Launcher.WindowsShell) == "" {
		errors = append(errors, ValidationError{
			Field:   "launcher.windows_shell",
			Value:   c.Launcher.WindowsShell,
			Message: "must not be empty",
		})
	}

	return errors
}

func (c *Config) validateDialog() []ValidationError {
	if c.Dialog.Backend == "" || slices.Contains(ValidDialogBackends(), c.Dialog.Backend) {
		return nil
	}
	return []ValidationError{{
		Field:   "dialog.backend",
		Value:   c.Dialog.Backend,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidDialogBackends(), ", ")),
	}}
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative",
		})
	}
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateTUI() []ValidationError {
	const maxLogLinesLimit = 100000
	if c.TUI.MaxLogLines < 0 || c.TUI.MaxLogLines > maxLogLinesLimit {
		return []ValidationError{{
			Field:   "tui.max_log_lines",
			Value:   c.TUI.MaxLogLines,
			Message: fmt.Sprintf("must be between 0 and %d", maxLogLinesLimit),
		}}
	}
	return nil
}
