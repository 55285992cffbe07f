package cli

import (
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-readability"
)

// IsHTML reports whether a file name looks like a saved web page.
func IsHTML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// ExtractText returns the readable article text of an HTML page. pageURL is
// used to resolve relative links and may be empty.
func ExtractText(r io.Reader, pageURL string) (title, text string, err error) {
	if pageURL == "" {
		pageURL = "http://localhost/"
	}
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}
	article, err := readability.FromReader(r, parsedURL)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract article: %w", err)
	}
	return article.Title, strings.TrimSpace(article.TextContent), nil
}
