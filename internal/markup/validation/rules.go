package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-docmark/internal/markup"
	"github.com/goliatone/go-docmark/internal/markup/token"
)

// ErrInvalidRule is returned when a rule cannot be built from its config.
var ErrInvalidRule = errors.New("validation: invalid rule configuration")

var (
	tagNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)
	htmlTagPattern = regexp.MustCompile(`<(/?)([A-Za-z][A-Za-z0-9-]*)`)
)

// TagRuleConfig describes the HTML tags a TagRule flags.
type TagRuleConfig struct {
	Name string
	// Tags are matched case insensitively.
	Tags []string
	// Behavior is the severity of the reported diagnostic, warning or error.
	Behavior markup.Severity
	// OpeningTagOnly ignores closing tags.
	OpeningTagOnly bool
	// Message overrides the default message. %s is replaced by the tag.
	Message string
}

// Validate checks the configuration.
func (cfg TagRuleConfig) Validate() error {
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Name, validation.Required),
		validation.Field(&cfg.Tags, validation.Required, validation.Each(validation.Match(tagNamePattern))),
		validation.Field(&cfg.Behavior, validation.Required, validation.In(markup.SeverityWarning, markup.SeverityError)),
	)
}

// TagRule reports raw HTML tags by name.
type TagRule struct {
	cfg  TagRuleConfig
	tags map[string]struct{}
}

// NewTagRule validates cfg and builds the rule.
func NewTagRule(cfg TagRuleConfig) (*TagRule, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRule, cfg.Name, err)
	}
	tags := make(map[string]struct{}, len(cfg.Tags))
	for _, tag := range cfg.Tags {
		tags[strings.ToLower(tag)] = struct{}{}
	}
	return &TagRule{cfg: cfg, tags: tags}, nil
}

func (r *TagRule) Name() string { return r.cfg.Name }

func (r *TagRule) Validate(tree *token.Tree) []markup.Diagnostic {
	var diags []markup.Diagnostic
	source := tree.Source()
	_ = tree.Walk(func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		var raw []byte
		switch n := node.(type) {
		case *ast.RawHTML:
			raw = segmentsValue(n.Segments, source)
		case *ast.HTMLBlock:
			raw = segmentsValue(n.Lines(), source)
			if n.HasClosure() {
				raw = append(raw, n.ClosureLine.Value(source)...)
			}
		default:
			return ast.WalkContinue, nil
		}
		for _, match := range htmlTagPattern.FindAllSubmatch(raw, -1) {
			closing := len(match[1]) > 0
			if closing && r.cfg.OpeningTagOnly {
				continue
			}
			name := strings.ToLower(string(match[2]))
			if _, ok := r.tags[name]; !ok {
				continue
			}
			diags = append(diags, markup.Diagnostic{
				Code:     markup.CodeTagDisallowed,
				Severity: r.cfg.Behavior,
				Message:  r.message(name),
				Line:     tree.Line(node),
			})
		}
		return ast.WalkSkipChildren, nil
	})
	return diags
}

func segmentsValue(segments *text.Segments, source []byte) []byte {
	var out []byte
	for i := 0; i < segments.Len(); i++ {
		segment := segments.At(i)
		out = append(out, segment.Value(source)...)
	}
	return out
}

func (r *TagRule) message(tag string) string {
	if r.cfg.Message != "" {
		return strings.ReplaceAll(r.cfg.Message, "%s", tag)
	}
	return fmt.Sprintf("html tag <%s> is not allowed", tag)
}

var nestingContainers = map[ast.NodeKind]string{
	ast.KindListItem:   "list item",
	ast.KindBlockquote: "block quote",
}

// HeadingNestingRule warns about headings placed inside lists or block
// quotes, which most themes cannot anchor.
type HeadingNestingRule struct{}

func (HeadingNestingRule) Name() string { return "heading-nesting" }

func (HeadingNestingRule) Validate(tree *token.Tree) []markup.Diagnostic {
	var diags []markup.Diagnostic
	_ = tree.Walk(func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || node.Kind() != ast.KindHeading {
			return ast.WalkContinue, nil
		}
		for parent := node.Parent(); parent != nil; parent = parent.Parent() {
			container, nested := nestingContainers[parent.Kind()]
			if nested {
				diags = append(diags, markup.Diagnostic{
					Code:     markup.CodeHeadingNested,
					Severity: markup.SeverityWarning,
					Message:  "heading nested in " + container,
					Line:     tree.Line(node),
				})
				break
			}
		}
		return ast.WalkSkipChildren, nil
	})
	return diags
}

// IncludeTargetRule rejects include directives whose target can never be
// resolved: empty, absolute or remote.
type IncludeTargetRule struct{}

func (IncludeTargetRule) Name() string { return "include-target" }

func (IncludeTargetRule) Validate(tree *token.Tree) []markup.Diagnostic {
	var diags []markup.Diagnostic
	_ = tree.Walk(func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		include, ok := node.(token.Include)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		target := include.IncludeReference().Target
		var problem string
		switch {
		case target == "":
			problem = "include target is empty"
		case strings.Contains(target, "://"):
			problem = fmt.Sprintf("include target %q is remote", target)
		case filepath.IsAbs(target) || strings.HasPrefix(target, "/"):
			problem = fmt.Sprintf("include target %q is absolute", target)
		default:
			return ast.WalkContinue, nil
		}
		diags = append(diags, markup.Diagnostic{
			Code:     markup.CodeIncludeTarget,
			Severity: markup.SeverityError,
			Message:  problem,
			Line:     tree.Line(node),
		})
		return ast.WalkContinue, nil
	})
	return diags
}

// PlaceholderRule warns about {{name}} placeholders with no configured
// replacement. Such placeholders are rendered verbatim.
type PlaceholderRule struct {
	known map[string]struct{}
}

// NewPlaceholderRule builds the rule for the configured token names.
func NewPlaceholderRule(tokens map[string]string) *PlaceholderRule {
	known := make(map[string]struct{}, len(tokens))
	for name := range tokens {
		known[name] = struct{}{}
	}
	return &PlaceholderRule{known: known}
}

func (r *PlaceholderRule) Name() string { return "placeholder" }

func (r *PlaceholderRule) Validate(tree *token.Tree) []markup.Diagnostic {
	var diags []markup.Diagnostic
	_ = tree.Walk(func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		placeholder, ok := node.(*token.Placeholder)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		if _, known := r.known[placeholder.Name]; !known {
			diags = append(diags, markup.Diagnostic{
				Code:     markup.CodePlaceholderUnknown,
				Severity: markup.SeverityWarning,
				Message:  fmt.Sprintf("placeholder {{%s}} has no replacement", placeholder.Name),
				Line:     tree.Line(node),
			})
		}
		return ast.WalkContinue, nil
	})
	return diags
}
