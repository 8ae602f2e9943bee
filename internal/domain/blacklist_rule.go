package domain

import "github.com/uptrace/bun"

// Blacklist rule types evaluated by internal/contentvalidator.
const (
	BlacklistRuleWord   = "word"
	BlacklistRuleDomain = "domain"
	BlacklistRuleRegex  = "regex"
)

// BlacklistRule gates post content at validation time. Disabled rules are
// ignored. Owned by the admin interface; the core only reads it.
type BlacklistRule struct {
	bun.BaseModel `bun:"table:blacklist_rules,alias:br"`

	ID        int64  `bun:"id,pk,autoincrement" json:"id"`
	Type      string `bun:"type,notnull" json:"type"`
	Pattern   string `bun:"pattern,notnull" json:"pattern"`
	IsEnabled bool   `bun:"is_enabled,notnull,default:true" json:"is_enabled"`
}
