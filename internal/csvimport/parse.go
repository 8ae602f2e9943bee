package csvimport

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gopublicist/publicist/internal/domain"
)

// parseMediaURLs splits a pipe-separated media_urls column into Media
// entries, each defaulting to the photo type - the admin interface
// records the real type separately once uploaded; a CSV batch import
// only ever supplies bare URLs.
func parseMediaURLs(raw string) ([]domain.Media, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, "|")
	media := make([]domain.Media, 0, len(parts))
	for _, part := range parts {
		url := strings.TrimSpace(part)
		if url == "" {
			continue
		}
		media = append(media, domain.Media{Type: domain.MediaPhoto, URL: url})
	}
	return media, nil
}

// parseButtons accepts either a JSON array of {text,url} objects or a
// semicolon-separated list of "text|url" pairs.
func parseButtons(raw string) ([]domain.Button, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var buttons []domain.Button
		if err := json.Unmarshal([]byte(raw), &buttons); err != nil {
			return nil, fmt.Errorf("некорректный JSON в buttons: %w", err)
		}
		return buttons, nil
	}

	var buttons []domain.Button
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		fields := strings.SplitN(pair, "|", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("некорректная пара в buttons: %q", pair)
		}
		buttons = append(buttons, domain.Button{
			Text: strings.TrimSpace(fields[0]),
			URL:  strings.TrimSpace(fields[1]),
		})
	}
	return buttons, nil
}
