// Package config holds the solver settings shared by the command line tool
// and the JSON app.
package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Config is read from a TOML file; flags override individual keys.
type Config struct {
	Engine            string        `toml:"engine" validate:"oneof=highs bnb"`
	TimeLimit         time.Duration `toml:"time_limit" validate:"gte=0"`
	RelativeGap       float64       `toml:"relative_gap" validate:"gte=0,lte=1"`
	ModelFile         string        `toml:"model_file"`
	SkipNonNegativity bool          `toml:"skip_nonnegativity"`
	MaxSize           int           `toml:"max_size" validate:"gte=0"`
	NodeLimit         int           `toml:"node_limit" validate:"gte=0"`
	LogLevel          string        `toml:"log_level" validate:"oneof=debug info warn error"`
}

var validate = validator.New()

// Default returns the settings used when no file is given. A zero
// TimeLimit leaves the engine unlimited.
func Default() Config {
	return Config{
		Engine:    "highs",
		ModelFile: "model.rlp",
		NodeLimit: 100000,
		LogLevel:  "info",
	}
}

// Load decodes path over the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	c := Default()
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.Errorf("config: %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.Errorf("config: invalid %s %v (%s=%s)", fe.Field(), fe.Value(), fe.Tag(), fe.Param())
		}
		return errors.Wrap(err, "config")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level; unknown names map to info.
func (c Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
