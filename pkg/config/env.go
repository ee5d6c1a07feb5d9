package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// envPrefix is prepended to every entry's upper-cased "CATEGORY_KEY" name
// to form its environment variable name.
const envPrefix = "USBVAULT_"

// envName returns the environment variable name an entry is seeded from.
func envName(category, key string) string {
	return envPrefix + strings.ToUpper(category) + "_" + strings.ToUpper(key)
}

// SeedFromEnvironment loads the .env file at path (if it exists; a missing
// file is not an error) via godotenv, then applies any USBVAULT_* variable
// that names a declared entry -- from the .env file or from the process's
// actual environment, the latter taking precedence -- as an override. It is
// meant to run once at process startup, before any explicit configuration
// import, so that environment-provided defaults are layered underneath
// whatever the configuration store later supplies.
func SeedFromEnvironment(r *Registry, path string) error {
	fileVars := make(map[string]string)
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			vars, err := godotenv.Read(path)
			if err != nil {
				return err
			}
			fileVars = vars
		} else if !os.IsNotExist(err) {
			return err
		}
	}

	for _, d := range r.sortedDescriptors() {
		name := envName(d.category, d.key)
		value, ok := os.LookupEnv(name)
		if !ok {
			value, ok = fileVars[name]
		}
		if !ok {
			continue
		}
		if err := d.setText(value); err != nil {
			return err
		}
	}
	return nil
}
