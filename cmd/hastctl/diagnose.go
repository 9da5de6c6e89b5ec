package main

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/hast-app/hastauth"
	"github.com/hast-app/hastauth/internal/normalize"
	"github.com/hast-app/hastauth/internal/transport"
	"github.com/hast-app/hastauth/jwt"
	"github.com/hast-app/hastauth/middleware"
	"github.com/hast-app/hastauth/permission"
	"github.com/spf13/cobra"
)

// report is the diagnose output. Tokens and passwords never appear in it.
type report struct {
	BaseURL string          `json:"baseUrl"`
	Probe   hastauth.Result `json:"probe"`
	SignIn  *signInShape    `json:"signIn,omitempty"`
}

// signInShape describes how a sign-in response would be classified.
type signInShape struct {
	Status       int      `json:"status,omitempty"`
	TransportErr string   `json:"transportError,omitempty"`
	Outcome      string   `json:"outcome,omitempty"`
	Rule         string   `json:"rule,omitempty"`
	Message      string   `json:"message,omitempty"`
	TokenPath    string   `json:"tokenPath,omitempty"`
	TokenIsJWT   bool     `json:"tokenIsJwt"`
	UserKeys     []string `json:"userKeys,omitempty"`
	RoleGatePass *bool    `json:"roleGatePass,omitempty"`
	BodyKeys     []string `json:"bodyKeys,omitempty"`
}

func newDiagnoseCmd(a *app) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Probe the backend and analyze the sign-in response shape",
		Long: "diagnose runs the connectivity probe and, with --user, sends one sign-in request " +
			"and reports which classification rule matched, where the token was found and whether " +
			"the role gate would accept the user. Nothing is stored.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := a.Client(ctx)
			if err != nil {
				return err
			}

			rep := report{BaseURL: c.BaseURL(), Probe: c.TestConnection(ctx)}
			if username != "" {
				password, err := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).secret("Password: ")
				if err != nil {
					return err
				}
				shape, err := a.analyzeSignIn(ctx, username, password)
				if err != nil {
					return err
				}
				rep.SignIn = shape
			}

			if err := writeJSON(cmd.OutOrStdout(), rep); err != nil {
				return err
			}
			if !rep.Probe.Success {
				return errFailedResult
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "also analyze a sign-in for this user")
	return cmd
}

func (a *app) analyzeSignIn(ctx context.Context, username, password string) (*signInShape, error) {
	cfg := a.cfg
	t, err := transport.New(transport.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
		Headers:   cfg.API.Headers,
	}, middleware.Chain(http.DefaultTransport, middleware.RequestID(), middleware.Logging(a.logger)))
	if err != nil {
		return nil, err
	}

	shape := &signInShape{}
	resp, err := t.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   cfg.Endpoints.SignIn,
		JSON:   map[string]string{"user_name": strings.TrimSpace(username), "password": password},
	})
	var raw []byte
	switch {
	case err == nil:
		shape.Status = resp.Status
		raw = resp.Body
	default:
		var terr *transport.Error
		if !errors.As(err, &terr) || terr.Kind != transport.KindStatus {
			shape.TransportErr = err.Error()
			return shape, nil
		}
		shape.Status = terr.Status
		raw = terr.Body
	}

	out := normalize.Classify(raw, strings.TrimSpace(username))
	shape.Outcome = out.Kind.String()
	shape.Rule = out.Rule.String()
	shape.Message = out.Message
	shape.TokenPath = out.TokenPath
	if out.Parsed {
		shape.BodyKeys = sortedKeys(out.Body.Fields())
	}
	if out.Token != "" {
		_, jerr := jwt.Inspect(out.Token)
		shape.TokenIsJWT = jerr == nil
	}
	if out.UserInfo != nil {
		shape.UserKeys = sortedKeys(out.UserInfo)
		if out.Rule == normalize.RuleSuccessField {
			gate := permission.NewGate(cfg.RoleGate.FlagKeys, cfg.RoleGate.RoleKeys, cfg.RoleGate.RoleTokens)
			pass := gate.Allows(out.UserInfo)
			shape.RoleGatePass = &pass
		}
	}
	return shape, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
