package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Kind is the normalized shape of a response.
type Kind uint8

const (
	KindSuccess Kind = iota
	KindFailure
	KindAmbiguous
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	default:
		return "ambiguous"
	}
}

// Rule identifies which classification rule produced an Outcome.
type Rule uint8

const (
	RuleSuccessField Rule = iota + 1
	RuleToken
	RuleDescription
	RuleNone
)

func (r Rule) String() string {
	switch r {
	case RuleSuccessField:
		return "success_field"
	case RuleToken:
		return "token_field"
	case RuleDescription:
		return "description_heuristic"
	default:
		return "none"
	}
}

// Outcome is the result of classifying one response body.
type Outcome struct {
	Kind Kind
	Rule Rule

	// Token and TokenPath are set on success when a token was found.
	Token     string
	TokenPath string
	// UserInfo is set on success by RuleSuccessField and RuleToken.
	UserInfo map[string]any

	// Message is the backend's description on success, or the failure text
	// (description, then error) on failure. Empty means "use the default".
	Message    string
	StatusCode int

	Body   Body
	Parsed bool
}

// MissingToken reports a success that carried no token anywhere.
func (o Outcome) MissingToken() bool {
	return o.Kind == KindSuccess && o.Token == ""
}

// successWords trigger the description heuristic.
var successWords = []string{"thành công", "success"}

// Classify applies the precedence rules to raw. username seeds the minimal
// user record when the body carries none. Classify never fails: anything it
// cannot interpret is KindAmbiguous with the raw body attached.
func Classify(raw []byte, username string) Outcome {
	body, ok := Parse(raw)
	if !ok {
		return Outcome{Kind: KindAmbiguous, Rule: RuleNone, Body: body}
	}
	out := Outcome{Body: body, Parsed: true}

	// 1. explicit success field
	if body.Has("success") {
		out.Rule = RuleSuccessField
		if body.SuccessTrue() {
			out.Kind = KindSuccess
			out.UserInfo = body.UserInfo(username)
			out.Token, out.TokenPath = body.Token()
			out.Message = body.String("description")
			return out
		}
		out.Kind = KindFailure
		out.Message = body.FirstString("description", "error")
		out.StatusCode = body.Status()
		return out
	}

	// 2. bare token, older response shape
	if token, path := body.Token(); token != "" {
		out.Rule = RuleToken
		out.Kind = KindSuccess
		out.Token, out.TokenPath = token, path
		out.UserInfo = body.userObject("user", "data")
		if out.UserInfo == nil {
			out.UserInfo = map[string]any{}
		}
		return out
	}

	// 3. description text only
	if desc := body.String("description"); desc != "" {
		out.Rule = RuleDescription
		out.Message = desc
		if IsSuccessDescription(desc) {
			out.Kind = KindSuccess
		} else {
			out.Kind = KindFailure
			out.StatusCode = body.Status()
		}
		return out
	}

	out.Kind = KindAmbiguous
	out.Rule = RuleNone
	return out
}

// IsSuccessDescription is the substring heuristic used when a body carries
// only a description. It is deliberately kept apart from the structured
// rules; callers log every time it decides an outcome.
func IsSuccessDescription(desc string) bool {
	d := strings.ToLower(norm.NFC.String(desc))
	for _, w := range successWords {
		if strings.Contains(d, w) {
			return true
		}
	}
	return false
}
