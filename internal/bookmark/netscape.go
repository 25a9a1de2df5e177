package bookmark

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
)

// ErrNoBookmarkList is returned when a Netscape bookmark file contains
// no <DL> list at all.
var ErrNoBookmarkList = errors.New("no bookmark list found in document")

// ParseNetscape reads a Netscape bookmark file (the HTML export format
// produced by Firefox, Chrome, and friends) and converts it into an
// Entry tree rooted at a synthesized places root. The character
// encoding is sniffed from the document itself.
//
// The format is not valid HTML: <DT> and <DD> tags are left unclosed
// and folder lists sometimes end up nested inside the item that names
// them. Parsing with an HTML5 parser and scanning structurally instead
// of positionally absorbs both shapes.
func ParseNetscape(r io.Reader) (*Entry, error) {
	decoded, err := charset.NewReader(r, "text/html")
	if err != nil {
		return nil, fmt.Errorf("detect bookmark file encoding: %w", err)
	}

	doc, err := html.Parse(decoded)
	if err != nil {
		return nil, fmt.Errorf("parse bookmark file: %w", err)
	}

	list := findFirstList(doc)
	if list == nil {
		return nil, ErrNoBookmarkList
	}

	root := EmptyRoot(time.Now())
	var pending *Entry
	parseItems(list, &root.Children, &pending)
	return root, nil
}

// findFirstList locates the outermost <DL> element in the document.
func findFirstList(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Dl {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirstList(c); found != nil {
			return found
		}
	}
	return nil
}

// parseItems scans the children of n, appending parsed entries to out.
// pending tracks a folder whose <DL> has not been seen yet; the next
// list encountered becomes its children regardless of whether the
// parser placed that list as a sibling or inside the folder's <DT>.
func parseItems(n *html.Node, out *[]*Entry, pending **Entry) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.H3:
			folder := &Entry{
				Type:     KindContainer,
				Children: []*Entry{},
				Extra:    itemMetadata(c),
			}
			*out = append(*out, folder)
			*pending = folder
		case atom.A:
			place := &Entry{
				Type:  KindPlace,
				URI:   attrValue(c, "href"),
				Extra: itemMetadata(c),
			}
			*out = append(*out, place)
		case atom.Dl:
			if folder := *pending; folder != nil {
				*pending = nil
				var nested *Entry
				parseItems(c, &folder.Children, &nested)
			} else {
				parseItems(c, out, pending)
			}
		case atom.Dt, atom.Dd, atom.P:
			parseItems(c, out, pending)
		}
	}
}

// itemMetadata converts the attributes and text of an <A> or <H3> item
// into the metadata fields used by the JSON backup format. Netscape
// timestamps are seconds; the JSON format uses microseconds.
func itemMetadata(n *html.Node) map[string]json.RawMessage {
	extra := make(map[string]json.RawMessage, 3)

	title, err := json.Marshal(nodeText(n))
	if err == nil {
		extra["title"] = title
	}
	if added, ok := netscapeTimestamp(attrValue(n, "add_date")); ok {
		extra["dateAdded"] = added
	}
	if modified, ok := netscapeTimestamp(attrValue(n, "last_modified")); ok {
		extra["lastModified"] = modified
	}
	return extra
}

func netscapeTimestamp(value string) (json.RawMessage, bool) {
	seconds, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return nil, false
	}
	return json.RawMessage(strconv.FormatInt(seconds*1_000_000, 10)), true
}

func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, name) {
			return attr.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}
