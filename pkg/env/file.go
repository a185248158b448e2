// Package env provides the host environment: identity and the config file.
package env

import (
	"os"
	"sync"

	"github.com/BurntSushi/toml"
)

// EnvConfigFile names the environment variable holding the config file path.
const EnvConfigFile = "OSCOPE_CONFIG"

var (
	fileOnce sync.Once
	fileMeta toml.MetaData
	sections map[string]toml.Primitive
	fileErr  error
)

// ConfigFile returns the path of the TOML config file, empty if not set.
func ConfigFile() string {
	return os.Getenv(EnvConfigFile)
}

// LoadSection decodes a table of the config file into v. Keys absent
// from the file leave v untouched. It's a no-op without a config file.
func LoadSection(name string, v interface{}) error {
	fileOnce.Do(func() {
		if path := ConfigFile(); path != "" {
			fileMeta, fileErr = toml.DecodeFile(path, &sections)
		}
	})
	if fileErr != nil {
		return fileErr
	}
	prim, ok := sections[name]
	if !ok {
		return nil
	}
	return fileMeta.PrimitiveDecode(prim, v)
}

// DecodeSection decodes a table of TOML data into v.
func DecodeSection(data, name string, v interface{}) error {
	var tables map[string]toml.Primitive
	md, err := toml.Decode(data, &tables)
	if err != nil {
		return err
	}
	prim, ok := tables[name]
	if !ok {
		return nil
	}
	return md.PrimitiveDecode(prim, v)
}
