package permission

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/hast-app/hastauth/session"
)

// Default gate inputs for the HAST mobile client: only teachers may sign in.
var (
	DefaultFlagKeys   = []string{"is_teacher"}
	DefaultRoleKeys   = []string{"role_name"}
	DefaultRoleTokens = []string{"teacher", "giáo viên"}
)

// Gate decides whether a user record returned at login may hold a session
// in this client. A record passes when any flag key carries a truthy value
// (true or a non-zero integer) or any role key holds a string containing one
// of the role tokens, compared case-insensitively after NFC normalization.
type Gate struct {
	flagKeys   []string
	roleKeys   []string
	roleTokens []string
}

// NewGate builds a gate. Nil slices fall back to the defaults; empty
// non-nil slices disable that half of the check.
func NewGate(flagKeys, roleKeys, roleTokens []string) *Gate {
	if flagKeys == nil {
		flagKeys = DefaultFlagKeys
	}
	if roleKeys == nil {
		roleKeys = DefaultRoleKeys
	}
	if roleTokens == nil {
		roleTokens = DefaultRoleTokens
	}

	g := &Gate{
		flagKeys: append([]string(nil), flagKeys...),
		roleKeys: append([]string(nil), roleKeys...),
	}
	for _, tok := range roleTokens {
		tok = fold(tok)
		if tok != "" {
			g.roleTokens = append(g.roleTokens, tok)
		}
	}
	return g
}

// TeacherGate is the gate with all defaults.
func TeacherGate() *Gate {
	return NewGate(nil, nil, nil)
}

// Allows reports whether info passes the gate. A nil gate allows everything.
func (g *Gate) Allows(info map[string]any) bool {
	if g == nil {
		return true
	}
	for _, k := range g.flagKeys {
		if session.Truthy(info[k]) {
			return true
		}
	}
	for _, k := range g.roleKeys {
		role, ok := info[k].(string)
		if !ok || role == "" {
			continue
		}
		role = fold(role)
		for _, tok := range g.roleTokens {
			if strings.Contains(role, tok) {
				return true
			}
		}
	}
	return false
}

func fold(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}
