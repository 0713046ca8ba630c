package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// UnmatchedTomlKeysError errors are returned by Load when ErrorOnUnmatchedKeys is
// set and the toml file has keys that match no field of the target struct.
type UnmatchedTomlKeysError struct {
	Keys []toml.Key
}

func (e *UnmatchedTomlKeysError) Error() string {
	return fmt.Sprintf("There are keys in the config file that do not match any field in the given struct: %v", e.Keys)
}

// envFileName turns config.yml into config.<env>.yml.
func envFileName(file, env string) string {
	ext := path.Ext(file)
	if ext == "" {
		return fmt.Sprintf("%v.%v", file, env)
	}
	return fmt.Sprintf("%v.%v%v", strings.TrimSuffix(file, ext), env, ext)
}

func isRegularFile(file string) bool {
	info, err := os.Stat(file)
	return err == nil && info.Mode().IsRegular()
}

// configurationFiles lists the files to load, each followed by its environment
// specific variant, in the order given.
func (c *Config) configurationFiles(files ...string) []string {
	var found []string
	for _, file := range files {
		if isRegularFile(file) {
			found = append(found, file)
		} else {
			c.log("configuration file not found", zap.String("file", file))
		}

		if envFile := envFileName(file, c.GetEnvironment()); isRegularFile(envFile) {
			found = append(found, envFile)
		}
	}
	return found
}

func processFile(cfg interface{}, file string, errorOnUnmatchedKeys bool) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	switch {
	case strings.HasSuffix(file, ".yaml") || strings.HasSuffix(file, ".yml"):
		return unmarshalYAML(data, cfg, errorOnUnmatchedKeys)
	case strings.HasSuffix(file, ".toml"):
		return unmarshalToml(data, cfg, errorOnUnmatchedKeys)
	case strings.HasSuffix(file, ".json"):
		return unmarshalJSON(data, cfg, errorOnUnmatchedKeys)
	}

	if err := unmarshalToml(data, cfg, errorOnUnmatchedKeys); err == nil {
		return nil
	} else if unmatched, ok := err.(*UnmatchedTomlKeysError); ok {
		return unmatched
	}

	if err := unmarshalJSON(data, cfg, errorOnUnmatchedKeys); err == nil {
		return nil
	} else if strings.Contains(err.Error(), "json: unknown field") {
		return err
	}

	if err := unmarshalYAML(data, cfg, errorOnUnmatchedKeys); err == nil {
		return nil
	} else if typeErr, ok := err.(*yaml.TypeError); ok {
		return typeErr
	}

	return errors.New("failed to decode config")
}

func unmarshalYAML(data []byte, cfg interface{}, errorOnUnmatchedKeys bool) error {
	if errorOnUnmatchedKeys {
		return yaml.UnmarshalStrict(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func unmarshalToml(data []byte, cfg interface{}, errorOnUnmatchedKeys bool) error {
	metadata, err := toml.Decode(string(data), cfg)
	if err == nil && len(metadata.Undecoded()) > 0 && errorOnUnmatchedKeys {
		return &UnmatchedTomlKeysError{Keys: metadata.Undecoded()}
	}
	return err
}

func unmarshalJSON(data []byte, cfg interface{}, errorOnUnmatchedKeys bool) error {
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	if errorOnUnmatchedKeys {
		decoder.DisallowUnknownFields()
	}

	if err := decoder.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func structFields(cfg interface{}) (reflect.Value, error) {
	v := reflect.Indirect(reflect.ValueOf(cfg))
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, errors.New("invalid config, should be struct")
	}
	return v, nil
}

// processDefaults decodes the `default` tag of every blank field as yaml, so
// durations, numbers and lists work the same way they do in files.
func processDefaults(cfg interface{}) error {
	v, err := structFields(cfg)
	if err != nil {
		return err
	}

	for i := 0; i < v.NumField(); i++ {
		fieldStruct := v.Type().Field(i)
		field := v.Field(i)
		if !field.CanAddr() || !field.CanInterface() {
			continue
		}

		if value := fieldStruct.Tag.Get("default"); value != "" && field.IsZero() {
			if err := yaml.Unmarshal([]byte(value), field.Addr().Interface()); err != nil {
				return fmt.Errorf("%s: %w", fieldStruct.Name, err)
			}
		}

		if field.Kind() == reflect.Struct {
			if err := processDefaults(field.Addr().Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}

// processTags overrides fields from the environment. A field reads the variable
// named by its `env` tag, or PREFIX_PARENT_FIELD in the given and upper case.
func (c *Config) processTags(cfg interface{}, prefixes ...string) error {
	v, err := structFields(cfg)
	if err != nil {
		return err
	}

	for i := 0; i < v.NumField(); i++ {
		fieldStruct := v.Type().Field(i)
		field := v.Field(i)
		if !field.CanAddr() || !field.CanInterface() {
			continue
		}

		names := []string{fieldStruct.Tag.Get("env")}
		if names[0] == "" {
			name := strings.Join(append(append([]string{}, prefixes...), fieldStruct.Name), "_")
			names = []string{name, strings.ToUpper(name)}
		}

		for _, name := range names {
			value, ok := c.Lookup(name)
			if !ok || value == "" {
				continue
			}
			c.log("loading field from env", zap.String("field", fieldStruct.Name), zap.String("env", name))
			if err := setFromEnv(field, value); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			break
		}

		if field.IsZero() && fieldStruct.Tag.Get("required") == "true" {
			return errors.New(fieldStruct.Name + " is required, but blank")
		}

		if field.Kind() == reflect.Struct {
			nested := append(append([]string{}, prefixes...), fieldStruct.Name)
			if fieldStruct.Anonymous && fieldStruct.Tag.Get("anonymous") == "true" {
				nested = prefixes
			}
			if err := c.processTags(field.Addr().Interface(), nested...); err != nil {
				return err
			}
		}
	}
	return nil
}

func setFromEnv(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.Bool:
		switch strings.ToLower(value) {
		case "0", "f", "false":
			field.SetBool(false)
		default:
			field.SetBool(true)
		}
	case reflect.String:
		field.SetString(value)
	default:
		return yaml.Unmarshal([]byte(value), field.Addr().Interface())
	}
	return nil
}
