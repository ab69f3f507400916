package main

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/vgv/internal/errors"
)

// snapshot is one SVG picture to encode.
type snapshot struct {
	// Content is the markup inside the root svg element, or the whole file
	// when it has none.
	Content string

	// Width and Height come from the root element, zero when absent.
	Width, Height uint32
}

// collectSnapshots expands directories to the .svg files they contain and
// returns all inputs sorted by name.
func collectSnapshots(inputs []string) ([]string, error) {
	var files []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, errors.New("E140").Wrap(err)
		}
		if !info.IsDir() {
			files = append(files, in)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(in, "*.svg"))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, errors.New("E141")
	}
	sort.Strings(files)
	return files, nil
}

func readSnapshot(path string) (snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return snapshot{}, errors.New("E140").Wrap(err)
	}
	return parseSnapshot(string(data)), nil
}

// parseSnapshot splits an SVG document into the root element's size and
// its inner markup.
func parseSnapshot(doc string) snapshot {
	z := html.NewTokenizer(strings.NewReader(doc))
	offset := 0
	for {
		tt := z.Next()
		raw := len(z.Raw())
		switch tt {
		case html.ErrorToken:
			// No svg element: the whole document is content.
			return snapshot{Content: strings.TrimSpace(doc)}

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "svg" {
				offset += raw
				continue
			}
			s := snapshot{}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				switch string(key) {
				case "width":
					s.Width = dimension(string(val))
				case "height":
					s.Height = dimension(string(val))
				}
			}
			if tt == html.SelfClosingTagToken {
				return s
			}
			start := offset + raw
			end := strings.LastIndex(doc, "</svg>")
			if end < start {
				end = len(doc)
			}
			s.Content = strings.TrimSpace(doc[start:end])
			return s
		}
		offset += raw
	}
}

// dimension reads an integer pixel length such as "320" or "320px".
func dimension(s string) uint32 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0
	}
	return uint32(f + 0.5)
}
