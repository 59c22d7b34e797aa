package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// Program is one configured quick-launch target.
type Program struct {
	Name string
	Path string
}

var (
	// ErrNoPrograms is returned when the programs section lists nothing.
	ErrNoPrograms = errors.New("config: no programs configured")
	// ErrEmptyPath is returned for an entry without a path.
	ErrEmptyPath = errors.New("config: empty program path")
)

// PathNotExistError reports a configured path missing on disk.
type PathNotExistError struct {
	Path string
}

func (e *PathNotExistError) Error() string {
	return fmt.Sprintf("config: path does not exist: %s", e.Path)
}

// ReadError wraps failures to read or parse the programs file.
type ReadError struct {
	File string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("config: read %s: %v", e.File, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

const programsSection = "programs"

var loadOptions = ini.LoadOptions{
	AllowBooleanKeys:    true,
	InsensitiveSections: true,
	IgnoreInlineComment: true,
	IgnoreContinuation:  true,
	KeyValueDelimiters:  "=",
}

// LoadPrograms reads and validates the programs file at path. A missing file
// yields an error matching fs.ErrNotExist.
func LoadPrograms(path string) ([]Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{File: path, Err: err}
	}
	programs, err := ParsePrograms(data)
	if err != nil {
		return nil, err
	}
	for _, p := range programs {
		if err := ValidatePath(p.Path); err != nil {
			return nil, err
		}
	}
	return programs, nil
}

// ParsePrograms extracts the [Programs] section in file order. Entries are
// either name=path or a bare path, in which case the name is the file name
// without extension.
func ParsePrograms(data []byte) ([]Program, error) {
	file, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, &ReadError{File: "<data>", Err: err}
	}
	section, err := file.GetSection(programsSection)
	if err != nil {
		return nil, ErrNoPrograms
	}

	var programs []Program
	for _, key := range section.Keys() {
		name := strings.TrimSpace(key.Name())
		value := strings.TrimSpace(key.Value())
		if value == "true" && isBarePath(name) {
			programs = append(programs, Program{Name: stem(name), Path: name})
			continue
		}
		if value == "" {
			continue
		}
		programs = append(programs, Program{Name: name, Path: value})
	}
	if len(programs) == 0 {
		return nil, ErrNoPrograms
	}
	return programs, nil
}

// isBarePath distinguishes a boolean key holding a path from name=true.
func isBarePath(name string) bool {
	return strings.ContainsAny(name, `/\.`)
}

func stem(path string) string {
	base := filepath.Base(strings.ReplaceAll(path, `\`, "/"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ValidatePath checks that path is non-empty and exists as a file or folder.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrEmptyPath
	}
	if _, err := os.Stat(path); err != nil {
		return &PathNotExistError{Path: path}
	}
	return nil
}
