package markup

import (
	"regexp"
	"strings"
)

// artifactPatterns is the allow-list of script-call and markup fragments the
// help compiler leaves embedded in visible text. Each is removed by targeted
// pattern matching; no general markup parsing happens here.
var artifactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`AddLanguageSpecificTextSet\([^)]*\);?`),
	regexp.MustCompile(`CopyToClipboard\([^)]*\);?`),
	regexp.MustCompile(`CopyCode\([^)]*\);?`),
	regexp.MustCompile(`ChangeCopyCodeIcon\([^)]*\);?`),
	regexp.MustCompile(`ExpandCollapse[A-Za-z]*\([^)]*\);?`),
	regexp.MustCompile(`\[LST[^\]]*\]`),
	regexp.MustCompile(`Copy\s+Code`),
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanText strips known script-call artifacts and stray markup fragments
// from extracted text, then collapses whitespace runs to single spaces.
func CleanText(s string) string {
	for _, p := range artifactPatterns {
		s = p.ReplaceAllString(s, "")
	}
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
