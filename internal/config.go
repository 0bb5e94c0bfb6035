package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes of the control API.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Control ControlConfig     `yaml:"control"`
	Data    DataConfig        `yaml:"data"`
	Editor  EditorConfig      `yaml:"editor"`
	Panel   PanelConfig       `yaml:"panel"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Control.Validate(); err != nil {
		return err
	}
	if err := c.Editor.Validate(); err != nil {
		return err
	}
	return c.Panel.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// ControlConfig configures the local control API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication, the API listens on loopback only.
//   - "token": Bearer token authentication; Token must be non-empty.
type ControlConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Mode    string `yaml:"mode"`
	Token   string `yaml:"token"`
}

// Address returns the listen address. The API is local-only.
func (c *ControlConfig) Address() string {
	return fmt.Sprintf("127.0.0.1:%d", c.Port)
}

// Validate validates the control configuration.
func (c *ControlConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
		validation.Field(&c.Port, validation.When(c.Enabled, validation.Required, validation.Min(1), validation.Max(65535))),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("control: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *ControlConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// DataConfig locates the config root holding settings.json and the default
// data directory. Empty means ~/.config/dropnote.
type DataConfig struct {
	ConfigDir string `yaml:"config_dir"`
}

// EditorConfig tunes note editing.
type EditorConfig struct {
	SaveDebounce time.Duration `yaml:"save_debounce"`
}

// Validate validates the editor configuration.
func (c *EditorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SaveDebounce, validation.Min(10*time.Millisecond), validation.Max(time.Minute)),
	)
}

// PanelConfig sets the panel geometry used until the user resizes it.
type PanelConfig struct {
	Width     int           `yaml:"width"`
	Height    int           `yaml:"height"`
	Gap       int           `yaml:"gap"`
	Animation time.Duration `yaml:"animation"`
}

// Validate validates the panel configuration.
func (c *PanelConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Width, validation.Required, validation.Min(200), validation.Max(4000)),
		validation.Field(&c.Height, validation.Required, validation.Min(150), validation.Max(4000)),
		validation.Field(&c.Gap, validation.Min(0), validation.Max(100)),
		validation.Field(&c.Animation, validation.Min(time.Duration(0)), validation.Max(2*time.Second)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Control: ControlConfig{
			Enabled: true,
			Port:    7717,
			Mode:    AuthModeDisabled,
		},
		Editor: EditorConfig{
			SaveDebounce: 500 * time.Millisecond,
		},
		Panel: PanelConfig{
			Width:     400,
			Height:    400,
			Gap:       4,
			Animation: 150 * time.Millisecond,
		},
	}
}
