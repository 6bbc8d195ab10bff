package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// Language selects the surface syntax of decompiled text.
type Language string

const (
	// LanguageCSharp renders members as C# source.
	LanguageCSharp Language = "csharp"
	// LanguageIL renders members as IL disassembly.
	LanguageIL Language = "il"
)

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = LanguageCSharp

// ParseLanguage parses a language name. Matching is case-insensitive and
// accepts "c#" and "cil" as aliases.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csharp", "c#", "cs":
		return LanguageCSharp, nil
	case "il", "cil", "msil":
		return LanguageIL, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidLanguage, "unknown language"), "language", s)
	}
}

func (l Language) String() string {
	return string(l)
}
