package domain

import dErrors "memscope/pkg/domain-errors"

// Source tags the provenance of a memory.
type Source string

const (
	SourceExplicitUserInput Source = "explicit_user_input"
	SourceUserSetting       Source = "user_setting"
)

var validSources = map[Source]bool{
	SourceExplicitUserInput: true,
	SourceUserSetting:       true,
}

// ParseSource constructs a Source from external input.
func ParseSource(s string) (Source, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "source cannot be empty")
	}
	src := Source(s)
	if !src.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown source %q", s)
	}
	return src, nil
}

// IsValid checks membership in the supported source set.
func (s Source) IsValid() bool { return validSources[s] }

func (s Source) String() string { return string(s) }
