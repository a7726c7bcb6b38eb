package fitz

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/hardwick-labs/paperbase/internal/core/domain"
)

// parsePage turns one page of MuPDF structured-text HTML into layout
// blocks and image blobs. MuPDF emits one <p> per layout block, <span>
// elements styled with the rendered font size, and images inline as
// base64 data URIs.
func parsePage(number int, markup string) (domain.Page, []domain.ImageBlob, error) {
	page := domain.Page{Number: number}
	var images []domain.ImageBlob

	tz := html.NewTokenizer(strings.NewReader(markup))

	var block *domain.Block
	var span *strings.Builder
	fontSize := 0.0

	closeSpan := func() {
		if span == nil {
			return
		}
		if text := span.String(); strings.TrimSpace(text) != "" {
			block.Spans = append(block.Spans, domain.Span{Text: text, FontSize: fontSize})
		}
		span = nil
	}
	closeBlock := func() {
		if block == nil {
			return
		}
		closeSpan()
		if len(block.Spans) > 0 {
			page.Blocks = append(page.Blocks, *block)
		}
		block = nil
	}

	for {
		switch tz.Next() {
		case html.ErrorToken:
			if err := tz.Err(); !errors.Is(err, io.EOF) {
				return page, nil, fmt.Errorf("tokenizing markup: %w", err)
			}
			closeBlock()
			return page, images, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			token := tz.Token()
			switch token.Data {
			case "p":
				closeBlock()
				block = &domain.Block{}
			case "span":
				if block == nil {
					break
				}
				closeSpan()
				fontSize = fontSizeFromStyle(attr(token, "style"))
				span = &strings.Builder{}
			case "img":
				blob, ok := decodeDataURI(number, attr(token, "src"))
				if ok {
					images = append(images, blob)
				}
			}

		case html.EndTagToken:
			token := tz.Token()
			switch token.Data {
			case "p":
				closeBlock()
			case "span":
				closeSpan()
			}

		case html.TextToken:
			if block == nil {
				break
			}
			if span == nil {
				// MuPDF occasionally emits bare text inside a block;
				// attach it at the last seen font size.
				span = &strings.Builder{}
			}
			span.Write(tz.Text())
		}
	}
}

// attr returns the named attribute value or "".
func attr(token html.Token, name string) string {
	for _, a := range token.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// fontSizeFromStyle parses the pt value of a font-size declaration out
// of an inline style, returning 0 when absent or malformed.
func fontSizeFromStyle(style string) float64 {
	for _, decl := range strings.Split(style, ";") {
		key, value, found := strings.Cut(decl, ":")
		if !found || strings.TrimSpace(key) != "font-size" {
			continue
		}
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "pt"))
		size, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0
		}
		return size
	}
	return 0
}

// decodeDataURI decodes a base64 image data URI into a blob for the
// given page. Non-image and non-base64 sources are ignored.
func decodeDataURI(page int, src string) (domain.ImageBlob, bool) {
	rest, found := strings.CutPrefix(src, "data:image/")
	if !found {
		return domain.ImageBlob{}, false
	}
	ext, encoded, found := strings.Cut(rest, ";base64,")
	if !found {
		return domain.ImageBlob{}, false
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return domain.ImageBlob{}, false
	}
	return domain.ImageBlob{Page: page, Ext: ext, Data: data}, true
}
