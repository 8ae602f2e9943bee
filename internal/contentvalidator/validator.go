// Package contentvalidator implements the checks that gate a Post's entry
// into the publication queue: length/media caps, link scheme whitelisting,
// and blacklist rule matching.
package contentvalidator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gopublicist/publicist/internal/domain"
)

const (
	MaxBodyLen = 4096
	MaxMedia   = 10
)

var allowedLinkSchemes = map[string]bool{"http": true, "https": true}

var structValidator = validator.New()

// bounds mirrors the length caps a Post must respect as go-playground
// validator struct tags. The literals must track MaxBodyLen/MaxMedia -
// a struct tag can't reference a package constant.
type bounds struct {
	BodyHTML string         `validate:"max=4096"`
	Media    []domain.Media `validate:"max=10"`
}

// RuleSource supplies the enabled BlacklistRule set to validate against.
type RuleSource interface {
	EnabledBlacklistRules(ctx context.Context) ([]domain.BlacklistRule, error)
}

type Validator struct {
	rules RuleSource
}

func New(rules RuleSource) *Validator {
	return &Validator{rules: rules}
}

// Validate runs checks a-e in order, first failure wins, and returns a
// human-readable reason suitable for both UI display and persistence to
// Post.BlacklistReason.
func (v *Validator) Validate(ctx context.Context, post *domain.Post) (ok bool, reason *string, err error) {
	if verr := structValidator.Struct(bounds{BodyHTML: post.BodyHTML, Media: post.Media}); verr != nil {
		fieldErrs, ok := verr.(validator.ValidationErrors)
		if !ok {
			return fail(verr.Error())
		}
		for _, fe := range fieldErrs {
			switch fe.Field() {
			case "BodyHTML":
				return fail(fmt.Sprintf("body_html превышает допустимую длину %d символов", MaxBodyLen))
			case "Media":
				return fail(fmt.Sprintf("media превышает допустимое количество элементов %d", MaxMedia))
			}
		}
		return fail(verr.Error())
	}

	links, linkErr := ExtractLinks(post.BodyHTML)
	if linkErr != nil {
		return fail(fmt.Sprintf("не удалось разобрать ссылки в body_html: %v", linkErr))
	}
	for _, link := range links {
		if !allowedLinkSchemes[strings.ToLower(link.Scheme)] {
			return fail(fmt.Sprintf("недопустимая схема ссылки: %s", link.Raw))
		}
	}

	rules, rerr := v.rules.EnabledBlacklistRules(ctx)
	if rerr != nil {
		return false, nil, rerr
	}
	for _, rule := range rules {
		if !rule.IsEnabled {
			continue
		}
		if hit, why := matchRule(rule, post.BodyHTML, links); hit {
			return fail(why)
		}
	}

	return true, nil, nil
}

func fail(reason string) (bool, *string, error) {
	return false, &reason, nil
}

func matchRule(rule domain.BlacklistRule, body string, links []Link) (bool, string) {
	switch rule.Type {
	case domain.BlacklistRuleWord:
		if strings.Contains(strings.ToLower(body), strings.ToLower(rule.Pattern)) {
			return true, fmt.Sprintf("обнаружено запрещённое слово: %s", rule.Pattern)
		}
	case domain.BlacklistRuleDomain:
		needle := strings.ToLower(rule.Pattern)
		for _, link := range links {
			if strings.Contains(strings.ToLower(link.Host), needle) {
				return true, fmt.Sprintf("обнаружен запрещённый домен: %s", rule.Pattern)
			}
		}
	case domain.BlacklistRuleRegex:
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			return false, ""
		}
		if re.MatchString(body) {
			return true, fmt.Sprintf("текст соответствует запрещённому шаблону: %s", rule.Pattern)
		}
	}
	return false, ""
}
