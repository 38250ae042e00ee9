package engine

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	macebridge "github.com/macebridge/mace-bridge"
	"github.com/macebridge/mace-bridge/errors"
)

// Module search path handling. Foreign module files are resolved against an
// ordered list of directories seeded from MACE_BRIDGE_MODULE_PATH. The list
// is assembled once per runtime lifetime, on the refcount 0 -> 1 transition;
// a teardown and reacquire cycle assembles it again.

// sanitizeEntries removes the current-directory and empty entries. Both can
// shadow the foreign module name with unrelated local files. Missing entries
// are not an error; the function is idempotent.
func sanitizeEntries(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e == "" || e == "." {
			continue
		}
		out = append(out, e)
	}
	return out
}

// executableModuleDir derives the preferred module directory from the
// location of the running executable: its directory plus ../modules. This
// keeps resolution independent of the process working directory and of how
// the installation is laid out.
func executableModuleDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Clean(filepath.Join(filepath.Dir(exe), "..", "modules")), nil
}

// buildSearchPath assembles the full search path: the executable-derived
// directory first, then the sanitized MACE_BRIDGE_MODULE_PATH entries, then
// the isolated distribution's modules directory as a last resort.
func buildSearchPath(home string) []string {
	entries := sanitizeEntries(filepath.SplitList(os.Getenv(macebridge.EnvModulePath)))

	if exeDir, err := executableModuleDir(); err == nil {
		entries = append([]string{exeDir}, entries...)
	} else {
		Logger().Warn("cannot resolve executable location", zap.Error(err))
	}

	if home != "" {
		entries = append(entries, filepath.Join(home, "modules"))
	}

	Logger().Debug("module search path assembled", zap.Strings("path", entries))
	return entries
}

// locate returns the on-disk path of the named foreign module, searching the
// entries in order for <dir>/<name>.wasm.
func locate(name string, path []string) (string, error) {
	file := name + ".wasm"
	for _, dir := range path {
		p := filepath.Join(dir, file)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, nil
		}
	}
	return "", errors.ModuleNotFound(name, path)
}
