// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"os"
	"sort"
	"strings"
)

// EnvFile names the variable holding the signature of the running module.
const EnvFile = "REQUIREPLUS_FILE"

// moduleEnv returns base (or the host environment when base is nil) with
// EnvFile set to signature.
func moduleEnv(base []string, signature string) []string {
	if base == nil {
		base = os.Environ()
	}
	env := filterModuleEnv(base)
	return append(env, EnvFile+"="+signature)
}

// filterModuleEnv drops EnvFile from environ so a module never sees the
// identity of the module that started its process.
func filterModuleEnv(environ []string) []string {
	result := make([]string, 0, len(environ)+1)
	for _, e := range environ {
		name, _, ok := strings.Cut(e, "=")
		if ok && name == EnvFile {
			continue
		}
		result = append(result, e)
	}
	return result
}

// EnvToSlice converts a map of environment variables to a sorted slice.
func EnvToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}
