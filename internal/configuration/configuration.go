package configuration

import (
	"strconv"
	"strings"
)

type genericConfigProvider interface {
	Read(filenames ...string) (envMap map[string]string, err error)
}

type ConfigProviderImpl struct {
	GenericConfigReader genericConfigProvider
}

func NewConfigProvider() *ConfigProviderImpl {
	return &ConfigProviderImpl{
		GenericConfigReader: &GodotenvProvider{},
	}
}

func (c *ConfigProviderImpl) ReadGeneric(filenames ...string) (envMap map[string]string, err error) {
	return c.GenericConfigReader.Read(filenames...)
}

func (c *ConfigProviderImpl) MapKeyToString(envMap map[string]string, key string) string {
	if value, exists := envMap[key]; exists {
		return value
	}
	return ""
}

// MapKeyToBool returns fallback when the key is missing or not a boolean.
func (c *ConfigProviderImpl) MapKeyToBool(envMap map[string]string, key string, fallback bool) bool {
	value := strings.TrimSpace(c.MapKeyToString(envMap, key))
	if value == "" {
		return fallback
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return boolValue
}
