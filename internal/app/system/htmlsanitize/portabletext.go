package htmlsanitize

import (
	"html/template"
	"strings"

	"github.com/dalemusser/stratasite/internal/domain/models"
)

var decorators = map[string]string{
	"strong":         "strong",
	"em":             "em",
	"code":           "code",
	"underline":      "u",
	"strike-through": "s",
}

var blockStyles = map[string]string{
	"normal":     "p",
	"h1":         "h1",
	"h2":         "h2",
	"h3":         "h3",
	"h4":         "h4",
	"h5":         "h5",
	"h6":         "h6",
	"blockquote": "blockquote",
}

// RenderPortableText converts Portable Text blocks into sanitized HTML.
// Consecutive list items become <ul> or <ol> lists nested by level.
// Blocks of any type other than "block" are skipped.
func RenderPortableText(blocks []models.Block) template.HTML {
	if len(blocks) == 0 {
		return ""
	}
	var b strings.Builder
	var open []string // list tags currently open, innermost last

	closeTo := func(level int) {
		for len(open) > level {
			b.WriteString("</li></" + open[len(open)-1] + ">")
			open = open[:len(open)-1]
		}
	}

	for _, blk := range blocks {
		if blk.Type != "block" {
			continue
		}
		if blk.ListItem == "" {
			closeTo(0)
			tag := blockStyles[blk.Style]
			if tag == "" {
				tag = "p"
			}
			b.WriteString("<" + tag + ">")
			writeSpans(&b, blk)
			b.WriteString("</" + tag + ">")
			continue
		}

		level := blk.Level
		if level < 1 {
			level = 1
		}
		tag := "ul"
		if blk.ListItem == "number" {
			tag = "ol"
		}
		closeTo(level)
		switch {
		case len(open) == level && open[level-1] != tag:
			closeTo(level - 1)
			fallthrough
		case len(open) < level:
			for len(open) < level {
				b.WriteString("<" + tag + "><li>")
				open = append(open, tag)
			}
		default:
			b.WriteString("</li><li>")
		}
		writeSpans(&b, blk)
	}
	closeTo(0)
	return HTML(b.String())
}

func writeSpans(b *strings.Builder, blk models.Block) {
	links := make(map[string]models.MarkDef, len(blk.MarkDefs))
	for _, md := range blk.MarkDefs {
		links[md.Key] = md
	}
	for _, span := range blk.Children {
		var closers []string
		for _, mark := range span.Marks {
			if tag, ok := decorators[mark]; ok {
				b.WriteString("<" + tag + ">")
				closers = append(closers, "</"+tag+">")
				continue
			}
			if md, ok := links[mark]; ok && md.Type == "link" && md.Href != "" {
				b.WriteString(`<a href="` + template.HTMLEscapeString(md.Href) + `"`)
				if md.OpenInNewTab {
					b.WriteString(` target="_blank" rel="noopener"`)
				}
				b.WriteString(">")
				closers = append(closers, "</a>")
			}
		}
		text := template.HTMLEscapeString(span.Text)
		b.WriteString(strings.ReplaceAll(text, "\n", "<br>"))
		for i := len(closers) - 1; i >= 0; i-- {
			b.WriteString(closers[i])
		}
	}
}
