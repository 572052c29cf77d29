package parser

import (
	"regexp"
	"strings"
)

var (
	summaryPattern = regexp.MustCompile(`(?s)<summary>(.*?)</summary>`)
	remarksPattern = regexp.MustCompile(`(?s)<remarks>(.*?)</remarks>`)
	seePattern     = regexp.MustCompile(`<see(?:also)?\s+(?:cref|langword|href)="([^"]*)"\s*/>`)
	tagPattern     = regexp.MustCompile(`<[^>]+>`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// xmlDoc holds the parts of a /// comment block the index uses
type xmlDoc struct {
	summary string
	remarks string
}

// parseXMLDoc extracts <summary> and <remarks>. A comment without a summary
// element is treated as a bare summary.
func parseXMLDoc(raw string) xmlDoc {
	if raw == "" {
		return xmlDoc{}
	}

	var doc xmlDoc
	if m := summaryPattern.FindStringSubmatch(raw); m != nil {
		doc.summary = cleanXMLText(m[1])
	} else if !strings.Contains(raw, "<") {
		doc.summary = cleanXMLText(raw)
	}
	if m := remarksPattern.FindStringSubmatch(raw); m != nil {
		doc.remarks = cleanXMLText(m[1])
	}
	return doc
}

// cleanXMLText flattens <see cref="T:X"/> references to X, drops remaining
// tags and collapses whitespace
func cleanXMLText(s string) string {
	s = seePattern.ReplaceAllStringFunc(s, func(match string) string {
		ref := seePattern.FindStringSubmatch(match)[1]
		// cref values may carry a member-kind prefix such as "T:" or "P:"
		if len(ref) > 2 && ref[1] == ':' {
			ref = ref[2:]
		}
		return lastSegment(ref)
	})
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&", "&quot;", `"`).Replace(s)
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}
