package ui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/styles"
)

// bannerLexer marks the component banner lines in master text
var bannerLexer = chroma.MustNewLexer(
	&chroma.Config{
		Name:      "compacter-master",
		Aliases:   []string{"master"},
		MimeTypes: []string{"text/x-compacter-master"},
	},
	func() chroma.Rules {
		return chroma.Rules{
			"root": {
				{Pattern: `^=== COMPONENT (START|END \([^)\n]*\)) ===$`, Type: chroma.GenericHeading},
				{Pattern: `^(Original: )(.*)$`, Type: chroma.ByGroups(chroma.Keyword, chroma.NameAttribute)},
				{Pattern: `^(Internal: )(\S*)( \| Added: )(.*)$`, Type: chroma.ByGroups(chroma.Keyword, chroma.NameConstant, chroma.Keyword, chroma.LiteralDate)},
				{Pattern: `[^\n]+`, Type: chroma.Text},
				{Pattern: `\n`, Type: chroma.Text},
			},
		}
	},
)

// HighlightMaster colors banner lines for terminal display. Text that
// fails to tokenise is returned unchanged.
func HighlightMaster(content string) string {
	lexer := chroma.Coalesce(bannerLexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.TTY16m

	var buf strings.Builder
	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return content
	}

	if err := formatter.Format(&buf, style, iterator); err != nil {
		return content
	}

	return buf.String()
}
