package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete codeblink configuration
type Config struct {
	Model    ModelConfig    `mapstructure:"model" yaml:"model"`
	Secrets  SecretsConfig  `mapstructure:"secrets" yaml:"secrets"`
	Editor   EditorConfig   `mapstructure:"editor" yaml:"editor"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Launcher LauncherConfig `mapstructure:"launcher" yaml:"launcher"`
	Dialog   DialogConfig   `mapstructure:"dialog" yaml:"dialog"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	TUI      TUIConfig      `mapstructure:"tui" yaml:"tui"`
}

// ModelConfig controls the call to the hosted model service
type ModelConfig struct {
	// Name is the Gemini model used for translation (default: "gemini-2.0-flash")
	Name string `mapstructure:"name" yaml:"name"`
	// APIKeyEnv is the environment variable holding the credential (default: "GEMINI_API_KEY")
	APIKeyEnv string `mapstructure:"api_key_env" yaml:"api_key_env"`
	// BaseURL overrides the service endpoint. Empty uses the SDK default.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// TimeoutSeconds bounds a single translation request (default: 60)
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// SecretsConfig controls where credentials are loaded from
type SecretsConfig struct {
	// EnvFile is a dotenv file loaded at startup without overriding the
	// process environment (default: ".env"). Empty disables it.
	EnvFile string `mapstructure:"env_file" yaml:"env_file"`
}

// FilterConfig is one named extension group offered by file dialogs
type FilterConfig struct {
	Name       string   `mapstructure:"name" yaml:"name"`
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
}

// EditorConfig controls editor defaults
type EditorConfig struct {
	// DefaultFilename is pre-filled in the save dialog and used for new buffers (default: "untitled.nl")
	DefaultFilename string `mapstructure:"default_filename" yaml:"default_filename"`
	// Filters are the extension groups offered by open and save dialogs
	Filters []FilterConfig `mapstructure:"filters" yaml:"filters"`
}

// OutputConfig controls where generated scripts are written.
// Generated path: <dir>/<stem><suffix><ext>
type OutputConfig struct {
	// Dir is the subdirectory holding generated scripts (default: "interpreted_files")
	Dir string `mapstructure:"dir" yaml:"dir"`
	// Suffix is appended to the editor file stem (default: "Processed")
	Suffix string `mapstructure:"suffix" yaml:"suffix"`
	// Ext is the generated file extension (default: ".py")
	Ext string `mapstructure:"ext" yaml:"ext"`
	// BaseDir anchors relative paths. Empty means the current directory.
	// Supports ~ for home directory expansion.
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
}

// LauncherConfig controls how generated scripts are run
type LauncherConfig struct {
	// Interpreter runs the script. Empty picks "python" on Windows, "python3" elsewhere.
	Interpreter string `mapstructure:"interpreter" yaml:"interpreter"`
	// Terminal is the emulator used on non-Windows hosts (default: "xterm")
	Terminal string `mapstructure:"terminal" yaml:"terminal"`
	// WindowsShell is the shell opened in the new console on Windows (default: "powershell.exe")
	WindowsShell string `mapstructure:"windows_shell" yaml:"windows_shell"`
}

// DialogConfig controls native file dialogs
type DialogConfig struct {
	// Backend forces a picker: "zenity", "kdialog", "osascript", "powershell".
	// Empty selects the first one available for the host platform.
	Backend string `mapstructure:"backend" yaml:"backend"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logs are written (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the log directory. Empty uses <config dir>/logs.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 5)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 2)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated log files (default: false)
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// TUIConfig controls the terminal editor
type TUIConfig struct {
	// ShowLineNumbers renders a line-number gutter in the editor (default: true)
	ShowLineNumbers bool `mapstructure:"show_line_numbers" yaml:"show_line_numbers"`
	// MaxLogLines caps the activity log kept in memory (default: 500)
	MaxLogLines int `mapstructure:"max_log_lines" yaml:"max_log_lines"`
}

// Timeout returns the model request timeout as a time.Duration (0 means no timeout)
func (m *ModelConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// ResolveInterpreter returns the configured interpreter or the platform default.
func (l *LauncherConfig) ResolveInterpreter() string {
	if l.Interpreter != "" {
		return l.Interpreter
	}
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

// ResolveBaseDir returns the absolute directory relative paths are anchored to.
func (o *OutputConfig) ResolveBaseDir() string {
	path := expandHome(o.BaseDir)
	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			return cwd
		}
		return "."
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// ResolveDir returns the log directory, falling back to <config dir>/logs.
func (l *LoggingConfig) ResolveDir() string {
	if l.Dir == "" {
		return filepath.Join(ConfigDir(), "logs")
	}
	return expandHome(l.Dir)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// DefaultFilters returns the two extension groups offered by file dialogs.
func DefaultFilters() []FilterConfig {
	return []FilterConfig{
		{Name: "Natural Language Files", Extensions: []string{"nl", "txt"}},
		{Name: "All Files", Extensions: []string{"*"}},
	}
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Name:           "gemini-2.0-flash",
			APIKeyEnv:      "GEMINI_API_KEY",
			BaseURL:        "",
			TimeoutSeconds: 60,
		},
		Secrets: SecretsConfig{
			EnvFile: ".env",
		},
		Editor: EditorConfig{
			DefaultFilename: "untitled.nl",
			Filters:         DefaultFilters(),
		},
		Output: OutputConfig{
			Dir:     "interpreted_files",
			Suffix:  "Processed",
			Ext:     ".py",
			BaseDir: "",
		},
		Launcher: LauncherConfig{
			Interpreter:  "", // Empty means python/python3 by platform
			Terminal:     "xterm",
			WindowsShell: "powershell.exe",
		},
		Dialog: DialogConfig{
			Backend: "",
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			Dir:        "",
			MaxSizeMB:  5,
			MaxBackups: 2,
			Compress:   false,
		},
		TUI: TUIConfig{
			ShowLineNumbers: true,
			MaxLogLines:     500,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("model.name", defaults.Model.Name)
	viper.SetDefault("model.api_key_env", defaults.Model.APIKeyEnv)
	viper.SetDefault("model.base_url", defaults.Model.BaseURL)
	viper.SetDefault("model.timeout_seconds", defaults.Model.TimeoutSeconds)

	viper.SetDefault("secrets.env_file", defaults.Secrets.EnvFile)

	viper.SetDefault("editor.default_filename", defaults.Editor.DefaultFilename)
	filters := make([]map[string]any, 0, len(defaults.Editor.Filters))
	for _, f := range defaults.Editor.Filters {
		filters = append(filters, map[string]any{"name": f.Name, "extensions": f.Extensions})
	}
	viper.SetDefault("editor.filters", filters)

	viper.SetDefault("output.dir", defaults.Output.Dir)
	viper.SetDefault("output.suffix", defaults.Output.Suffix)
	viper.SetDefault("output.ext", defaults.Output.Ext)
	viper.SetDefault("output.base_dir", defaults.Output.BaseDir)

	viper.SetDefault("launcher.interpreter", defaults.Launcher.Interpreter)
	viper.SetDefault("launcher.terminal", defaults.Launcher.Terminal)
	viper.SetDefault("launcher.windows_shell", defaults.Launcher.WindowsShell)

	viper.SetDefault("dialog.backend", defaults.Dialog.Backend)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)

	viper.SetDefault("tui.show_line_numbers", defaults.TUI.ShowLineNumbers)
	viper.SetDefault("tui.max_log_lines", defaults.TUI.MaxLogLines)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v and validates it.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults if it cannot be loaded
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "codeblink")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codeblink"
	}
	return filepath.Join(home, ".config", "codeblink")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
