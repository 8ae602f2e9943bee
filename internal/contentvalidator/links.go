package contentvalidator

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Link is one extracted <a href=...> reference.
type Link struct {
	Raw    string
	Scheme string
	Host   string
}

// ExtractLinks scans only <a> start tags' href attribute; every other tag
// is ignored, matching the original HTML parser's scope.
func ExtractLinks(bodyHTML string) ([]Link, error) {
	var links []Link
	tokenizer := html.NewTokenizer(strings.NewReader(bodyHTML))

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != nil && err.Error() != "EOF" {
				return links, err
			}
			return links, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if token.Data != "a" {
				continue
			}
			for _, attr := range token.Attr {
				if attr.Key != "href" {
					continue
				}
				u, err := url.Parse(attr.Val)
				if err != nil {
					links = append(links, Link{Raw: attr.Val})
					continue
				}
				links = append(links, Link{Raw: attr.Val, Scheme: u.Scheme, Host: u.Host})
			}
		}
	}
}
