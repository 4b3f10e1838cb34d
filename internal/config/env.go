package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix applied when resolving environment variables
// for flags left unset on the command line.
const EnvPrefix = "K8DEPLOYER"

// ApplyEnvOverrides walks fs and, for every flag not set via CLI, tries an
// environment variable matching the flag name: "include" becomes
// "K8DEPLOYER_INCLUDE". Kept from config/env.go's ApplyEnvOverrides
// verbatim in behavior, renamed prefix only.
func ApplyEnvOverrides(fs *pflag.FlagSet, prefix string) error {
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		envKey := buildEnvKey(prefix, f.Name)
		if val, ok := os.LookupEnv(envKey); ok {
			if err := fs.Set(f.Name, val); err != nil {
				errs = append(errs, fmt.Errorf("apply %s to flag --%s: %w", envKey, f.Name, err))
			}
		}
	})
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func buildEnvKey(prefix, name string) string {
	canonical := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	if strings.TrimSpace(prefix) == "" {
		return canonical
	}
	return strings.ToUpper(prefix) + "_" + canonical
}
