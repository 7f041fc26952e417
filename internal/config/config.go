// Package config loads .twigcs.yaml files and resolves the ruleset that
// applies to each template.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/yacobolo/twigcs/internal/rule"
)

// FileName is the configuration file looked up in each directory
const FileName = ".twigcs.yaml"

// Off disables a rule in the rules map
const Off = "off"

// Config mirrors a .twigcs.yaml file
type Config struct {
	Severity         string            `koanf:"severity" yaml:"severity" validate:"omitempty,oneof=ignore info warning error"`
	Display          string            `koanf:"display" yaml:"display" validate:"omitempty,oneof=all blocking"`
	Reporter         string            `koanf:"reporter" yaml:"reporter,omitempty" validate:"omitempty,oneof=text json emacs github checkstyle"`
	Paths            []string          `koanf:"paths" yaml:"paths" validate:"dive,required"`
	Exclude          []string          `koanf:"exclude" yaml:"exclude" validate:"dive,required"`
	Rules            map[string]string `koanf:"rules" yaml:"rules" validate:"dive,keys,required,endkeys,oneof=off ignore info warning error"`
	Workers          int               `koanf:"workers" yaml:"workers" validate:"gte=0"`
	ThrowSyntaxError bool              `koanf:"throw-syntax-error" yaml:"throw-syntax-error"`
	PrintLines       bool              `koanf:"print-lines" yaml:"print-lines"`
	MetricsFile      string            `koanf:"metrics-file" yaml:"metrics-file,omitempty"`
}

// ConfigurationError reports an unusable configuration file
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid configuration %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads and validates a single configuration file
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	return Decode(k, path)
}

// Decode unmarshals and validates configuration already loaded into k.
// path only labels errors.
func Decode(k *koanf.Koanf, path string) (*Config, error) {
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Severity = strings.ToLower(strings.TrimSpace(c.Severity))
	c.Display = strings.ToLower(strings.TrimSpace(c.Display))
	c.Reporter = strings.ToLower(strings.TrimSpace(c.Reporter))
	for name, value := range c.Rules {
		c.Rules[name] = strings.ToLower(strings.TrimSpace(value))
	}
}

// Validate checks field values against their constraints
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldError(fe))
	}
	return errors.Join(msgs...)
}

func fieldError(fe validator.FieldError) error {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "oneof":
		return fmt.Errorf("%s: %q is not one of %s", field, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Errorf("%s: must be at least %s", field, fe.Param())
	case "required":
		return fmt.Errorf("%s: must not be empty", field)
	default:
		return fmt.Errorf("%s: failed %q check", field, fe.Tag())
	}
}

// CheckRuleNames rejects rules map entries that name no rule in rs
func CheckRuleNames(rs *rule.Ruleset, rules map[string]string) error {
	var unknown []string
	for name := range rules {
		if _, _, ok := rs.Lookup(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%w: %s", rule.ErrUnknownRule, strings.Join(unknown, ", "))
}

// ApplyRules derives a ruleset from rs: "off" entries remove the rule and
// every other entry overrides its severity.
func ApplyRules(rs *rule.Ruleset, rules map[string]string) (*rule.Ruleset, error) {
	if len(rules) == 0 {
		return rs, nil
	}

	var off []string
	overrides := make(map[string]rule.Severity, len(rules))
	for name, value := range rules {
		if value == Off {
			off = append(off, name)
			continue
		}
		s, err := rule.ParseSeverity(value)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", name, err)
		}
		overrides[name] = s
	}
	sort.Strings(off)

	next, err := rs.WithOverrides(overrides)
	if err != nil {
		return nil, err
	}
	if len(off) > 0 {
		return next.Without(off...)
	}
	return next, nil
}
