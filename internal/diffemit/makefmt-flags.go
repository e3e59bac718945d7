package diffemit

import (
	"os"
	"path"
	"sort"
	"strings"

	"github.com/iwyu-go/iwyu-go/internal/common"
	"github.com/iwyu-go/iwyu-go/internal/ledger"
)

// DepCmdFlags mirrors the g++/clang -MD/-MF/-MT/-MQ/-MMD/-MP family, so
// iwyu-go can be dropped into a CMake/make build exactly where the compiler
// itself is invoked and still emit a Makefile dependency file alongside its
// normal diff output (SPEC_FULL.md §4 supplement 4, --format=make).
// See https://gcc.gnu.org/onlinedocs/gcc/Preprocessor-Options.html.
type DepCmdFlags struct {
	flagMF  string // -MF {abs filename}
	flagMT  string // -MT/-MQ (target name)
	flagMD  bool   // -MD (like -MF {def file})
	flagMMD bool   // -MMD (mention only user header files, not system header files)
	flagMP  bool   // -MP (add a phony target for each dependency other than the main file)

	origO string // if -MT not set, -o used as a target name, as-is from cmdLine
}

func (deps *DepCmdFlags) SetCmdFlagMF(absFilename string) {
	deps.flagMF = absFilename
}

func (deps *DepCmdFlags) SetCmdFlagMT(mtTarget string) {
	if len(deps.flagMT) > 0 {
		deps.flagMT += " \\\n "
	}
	deps.flagMT += mtTarget
}

func (deps *DepCmdFlags) SetCmdFlagMQ(mqTarget string) {
	if len(deps.flagMT) > 0 {
		deps.flagMT += " \\\n "
	}
	deps.flagMT += quoteMakefileTarget(mqTarget)
}

func (deps *DepCmdFlags) SetCmdFlagMD()  { deps.flagMD = true }
func (deps *DepCmdFlags) SetCmdFlagMMD() { deps.flagMMD = true }
func (deps *DepCmdFlags) SetCmdFlagMP()  { deps.flagMP = true }

func (deps *DepCmdFlags) SetCmdOutputFile(origO string) {
	deps.origO = origO
}

// ShouldGenerateDepFile determines whether to output a .d file besides the
// usual diff sections.
func (deps *DepCmdFlags) ShouldGenerateDepFile() bool {
	return deps.flagMD || deps.flagMF != ""
}

// GenerateAndSaveDepFile is called once l's desired-include set is final
// (after the trimmer runs): it lists l.File itself plus every desired
// include as dependencies of the build target.
func (deps *DepCmdFlags) GenerateAndSaveDepFile(l *ledger.PerFileLedger) (string, error) {
	targetName := deps.flagMT
	if len(targetName) == 0 {
		targetName = deps.calcDefaultTargetName(l)
	}

	depFileName := deps.calcOutputDepFileName(l)
	depListMainTarget := deps.calcDepList(l)
	depTargets := []DepFileTarget{
		{TargetName: targetName, TargetDepList: depListMainTarget},
	}

	if deps.flagMP {
		// adds a phony target for each dependency other than the main file,
		// so `make` doesn't error out when a header is deleted or renamed.
		for idx, depStr := range depListMainTarget {
			if idx > 0 { // 0 is the file itself
				depTargets = append(depTargets, DepFileTarget{TargetName: escapeMakefileSpaces(depStr)})
			}
		}
	}

	depFile := DepFile{DTargets: depTargets}
	return depFileName, depFile.WriteToFile(depFileName)
}

// calcDefaultTargetName returns the target name when no -MT/-MQ was given.
func (deps *DepCmdFlags) calcDefaultTargetName(l *ledger.PerFileLedger) string {
	if deps.origO != "" {
		return deps.origO
	}
	return l.File.Path()
}

// calcOutputDepFileName returns the name of the generated .d file.
func (deps *DepCmdFlags) calcOutputDepFileName(l *ledger.PerFileLedger) string {
	if deps.flagMF != "" {
		return deps.flagMF
	}
	return common.ReplaceFileExt(path.Base(l.File.Path()), ".d")
}

// calcDepList builds the dependency list: the file itself followed by every
// desired include, made relative to the working directory and sorted for
// determinism (unlike a compiler's own -M output, our desired set has no
// natural discovery order to preserve).
func (deps *DepCmdFlags) calcDepList(l *ledger.PerFileLedger) []string {
	includes := make([]ledger.QuotedInclude, 0, len(l.DesiredIncludes))
	for q := range l.DesiredIncludes {
		if deps.flagMMD && q.IsSystem() {
			continue
		}
		includes = append(includes, q)
	}
	sort.Slice(includes, func(i, j int) bool { return includes[i] < includes[j] })

	processPwd, _ := os.Getwd()
	if !strings.HasSuffix(processPwd, "/") {
		processPwd += "/"
	}
	relFileName := func(fileName string) string {
		return quoteMakefileTarget(strings.TrimPrefix(fileName, processPwd))
	}

	depList := make([]string, 0, 1+len(includes))
	depList = append(depList, quoteMakefileTarget(l.File.Path()))
	for _, q := range includes {
		depList = append(depList, relFileName(strings.Trim(string(q), "\"<>")))
	}
	return depList
}

// quoteMakefileTarget escapes any characters which are special to Make.
func quoteMakefileTarget(targetName string) (escaped string) {
	for i := 0; i < len(targetName); i++ {
		switch targetName[i] {
		case ' ', '\t':
			for j := i - 1; j >= 0 && targetName[j] == '\\'; j-- {
				escaped += string('\\') // escape the preceding backslashes
			}
			escaped += string('\\') // escape the space/tab
		case '$':
			escaped += string('$')
		case '#':
			escaped += string('\\')
		}
		escaped += string(targetName[i])
	}
	return
}
