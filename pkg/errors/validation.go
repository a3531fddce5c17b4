package errors

import (
	"strings"
	"unicode"
)

// maxSegmentLen bounds a single coordinate segment.
const maxSegmentLen = 256

// ValidateSegment validates one coordinate segment (group, artifact, version,
// classifier or type) before it is turned into a repository path.
//
// The validation rules are intentionally conservative:
//   - No control characters or whitespace
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
//
// Empty segments are accepted here; whether a segment is required is decided
// by the coordinate parser.
func ValidateSegment(kind, s string) error {
	if len(s) > maxSegmentLen {
		return New(ErrCodeMalformedCoordinate, "%s too long (max %d characters)", kind, maxSegmentLen)
	}

	for _, r := range s {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeMalformedCoordinate, "%s %q contains invalid characters", kind, s)
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(s, pattern) {
			return New(ErrCodeMalformedCoordinate, "%s %q contains invalid characters: %q", kind, s, pattern)
		}
	}

	return nil
}
