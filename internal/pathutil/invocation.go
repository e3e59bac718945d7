package pathutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// HasPrefixOrEqualOption reports whether flagValue is exactly optionName or
// of the form "optionName=...".
func HasPrefixOrEqualOption(optionName string, flagValue string) bool {
	return flagValue == optionName || strings.HasPrefix(flagValue, optionName+"=")
}

// CxxInvocation is the subset of a trailing compiler command line (the part
// of `iwyu-go -- g++ -I foo -DFLAG a.cc ...` after the `--`) that the engine
// needs: where to look for headers, what's predefined, and which file to
// analyze. Everything about actually compiling (pch generation, linking,
// remote dispatch) is out of scope (spec.md §1) and dropped.
type CxxInvocation struct {
	InputFile string
	Defines   []string // -DFOO or -DFOO=bar, stored as given
	SearchDirs SearchDirs
}

func isSourceOrHeaderName(name string) bool {
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	for _, ext := range headerExtSuffixes {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func pathAbs(cwd, relPath string) string {
	if relPath == "" || relPath[0] == '/' {
		return relPath
	}
	return filepath.Join(cwd, relPath)
}

// ParseCxxInvocation scans cmdLine (argv[0] is the compiler name) for
// -I/-iquote/-isystem/-include/-D and the input file, the way a real driver
// front end would hand search paths to the Path Normalizer. Anything else
// on the command line (-W flags, -std=, optimization levels) is irrelevant
// to include analysis and is silently ignored.
func ParseCxxInvocation(cwd string, cmdLine []string) (*CxxInvocation, error) {
	inv := &CxxInvocation{SearchDirs: MakeSearchDirs()}

	takeArg := func(key string, arg string, i *int) (string, bool) {
		if arg == key {
			if *i+1 < len(cmdLine) {
				*i++
				return cmdLine[*i], true
			}
			return "", false
		}
		if strings.HasPrefix(arg, key) {
			return arg[len(key):], true
		}
		return "", false
	}

	for i := 1; i < len(cmdLine); i++ {
		arg := cmdLine[i]
		if arg == "" {
			continue
		}
		switch {
		case arg == "-o":
			i++ // skip the object/output file argument, irrelevant here
		case strings.HasPrefix(arg, "-I"):
			if dir, ok := takeArg("-I", arg, &i); ok {
				inv.SearchDirs.AddI(pathAbs(cwd, dir))
			}
		case strings.HasPrefix(arg, "-iquote"):
			if dir, ok := takeArg("-iquote", arg, &i); ok {
				inv.SearchDirs.AddIquote(pathAbs(cwd, dir))
			}
		case strings.HasPrefix(arg, "-isystem"):
			if dir, ok := takeArg("-isystem", arg, &i); ok {
				inv.SearchDirs.AddIsystem(pathAbs(cwd, dir))
			}
		case strings.HasPrefix(arg, "-include"):
			if f, ok := takeArg("-include", arg, &i); ok {
				inv.SearchDirs.AddForcedInclude(pathAbs(cwd, f))
			}
		case strings.HasPrefix(arg, "-D"):
			if def, ok := takeArg("-D", arg, &i); ok {
				inv.Defines = append(inv.Defines, def)
			}
		case strings.HasPrefix(arg, "-"):
			// unrecognized flag: not our concern (-std=, -W*, -O*, ...)
		default:
			if isSourceOrHeaderName(arg) {
				if inv.InputFile != "" {
					return nil, fmt.Errorf("unsupported command line: multiple input files (%s and %s)", inv.InputFile, arg)
				}
				inv.InputFile = arg
			}
		}
	}

	if inv.InputFile == "" {
		return nil, fmt.Errorf("unsupported command line: no input file specified")
	}
	return inv, nil
}
