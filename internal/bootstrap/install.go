package bootstrap

import (
	"os"
	"path/filepath"
)

// InstallRoot is a resolved installation directory plus the name of the
// strategy that located it.
type InstallRoot struct {
	Dir    string
	Source string
}

// rootStrategy names one candidate location for the vdm installation.
type rootStrategy struct {
	name    string
	resolve func() (string, bool)
}

// systemInstallDirs are the packaged install locations, checked in order.
var systemInstallDirs = []string{
	"/opt/lib/vdm",
	"/usr/share/lib/vdm",
	"/usr/lib/vdm",
}

// defaultStrategies returns the ordered candidate list: the VDM_HOME
// environment variable, the fixed system install locations, and finally the
// directory containing the running executable.
func defaultStrategies() []rootStrategy {
	strategies := []rootStrategy{
		{name: "env:VDM_HOME", resolve: func() (string, bool) {
			dir := os.Getenv("VDM_HOME")
			return dir, dir != ""
		}},
	}
	for _, dir := range systemInstallDirs {
		strategies = append(strategies, rootStrategy{name: dir, resolve: func() (string, bool) {
			return dir, true
		}})
	}
	strategies = append(strategies, rootStrategy{name: "executable", resolve: func() (string, bool) {
		exe, err := os.Executable()
		if err != nil {
			return "", false
		}
		return filepath.Dir(exe), true
	}})
	return strategies
}

// ResolveInstallRoot evaluates the default candidate locations in order and
// returns the first that is an existing directory. It is a pure function of
// the environment; no search paths are mutated.
func ResolveInstallRoot() (InstallRoot, bool) {
	return resolveInstallRoot(defaultStrategies())
}

func resolveInstallRoot(strategies []rootStrategy) (InstallRoot, bool) {
	for _, s := range strategies {
		dir, ok := s.resolve()
		if !ok {
			continue
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		return InstallRoot{Dir: dir, Source: s.name}, true
	}
	return InstallRoot{}, false
}

// candidateNames lists the strategy names for diagnostics.
func candidateNames(strategies []rootStrategy) []string {
	names := make([]string, 0, len(strategies))
	for _, s := range strategies {
		names = append(names, s.name)
	}
	return names
}
