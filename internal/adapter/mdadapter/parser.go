package mdadapter

import (
	"bytes"
	"net/url"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

const (
	linkPrefix = "/d/"
)

var (
	startSeq = []byte{'[', '['}
	endSeq   = []byte{']', ']'}
	descSeq  = []byte{'|'}
)

/*
 * Masked link
 * [[abc]]
 * [[abc|Description]]
 */
type maskedLinkParser struct{}

func NewMaskedLinkParser() parser.InlineParser {
	return &maskedLinkParser{}
}

func (s *maskedLinkParser) Trigger() []byte {
	return startSeq[:1]
}

func (s *maskedLinkParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, startSeq) {
		return nil
	}

	end := bytes.Index(line, endSeq)
	if end < 0 {
		return nil
	}

	body := bytes.TrimSpace(line[len(startSeq):end])
	id, desc := body, body
	if idx := bytes.Index(body, descSeq); idx >= 0 {
		id = bytes.TrimSpace(body[:idx])
		desc = bytes.TrimSpace(body[idx+len(descSeq):])
	}

	if len(id) == 0 {
		return nil
	}

	if len(desc) == 0 {
		desc = id
	}

	block.Advance(end + len(endSeq))

	link := ast.NewLink()
	link.Destination = []byte(linkPrefix + url.PathEscape(string(id)))
	link.AppendChild(link, ast.NewString(desc))

	return link
}
