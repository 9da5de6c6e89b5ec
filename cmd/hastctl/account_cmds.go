package main

import (
	"context"
	"errors"

	"github.com/hast-app/hastauth"
	"github.com/hast-app/hastauth/messages"
	"github.com/hast-app/hastauth/validate"
	"github.com/spf13/cobra"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Read or update the signed-in user's profile",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Fetch the profile",
		Args:  cobra.NoArgs,
		RunE: runWithClient(a, func(ctx context.Context, c *hastauth.Client, _ []string) hastauth.Result {
			return c.GetProfile(ctx)
		}),
	}

	var fullName, email, phone, gender, dob, address string
	update := &cobra.Command{
		Use:   "update",
		Short: "Send the given profile fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var u hastauth.ProfileUpdate
			f := cmd.Flags()
			set := func(name string, dst **string, v string) {
				if f.Changed(name) {
					*dst = hastauth.String(v)
				}
			}
			set("full-name", &u.FullName, fullName)
			set("email", &u.Email, email)
			set("phone", &u.Phone, phone)
			set("gender", &u.Gender, gender)
			set("dob", &u.DateOfBirth, dob)
			set("address", &u.Address, address)

			c, err := a.Client(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd, c.UpdateProfile(cmd.Context(), u))
		},
	}
	uf := update.Flags()
	uf.StringVar(&fullName, "full-name", "", "full name")
	uf.StringVar(&email, "email", "", "email address")
	uf.StringVar(&phone, "phone", "", "phone number, 10 or 11 digits")
	uf.StringVar(&gender, "gender", "", "Nam/Nữ, male/female or 1/2")
	uf.StringVar(&dob, "dob", "", "date of birth, YYYY-MM-DD")
	uf.StringVar(&address, "address", "", "address")

	cmd.AddCommand(get, update)
	return cmd
}

func newPasswordCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Reset or change a password",
	}

	reset := &cobra.Command{
		Use:   "reset <username>",
		Short: "Ask the backend to send a new password by email",
		Args:  cobra.ExactArgs(1),
		RunE: runWithClient(a, func(ctx context.Context, c *hastauth.Client, args []string) hastauth.Result {
			return c.ResetPassword(ctx, args[0])
		}),
	}

	change := &cobra.Command{
		Use:   "change",
		Short: "Change the signed-in user's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
			oldPassword, err := p.secret("Current password: ")
			if err != nil {
				return err
			}
			newPassword, err := p.secret("New password: ")
			if err != nil {
				return err
			}
			confirm, err := p.secret("Confirm new password: ")
			if err != nil {
				return err
			}

			c, err := a.Client(cmd.Context())
			if err != nil {
				return err
			}
			if err := validate.PasswordChange(oldPassword, newPassword, confirm); err != nil {
				return localizedError(a.cfg.Messages, err)
			}
			return printResult(cmd, c.ChangePassword(cmd.Context(), oldPassword, newPassword, confirm))
		},
	}

	cmd.AddCommand(reset, change)
	return cmd
}

// localizedError renders a validate.Error from catalog, falling back to
// Vietnamese for texts the catalog leaves empty.
func localizedError(catalog messages.Catalog, err error) error {
	var verr *validate.Error
	if !errors.As(err, &verr) {
		return err
	}
	return errors.New(verr.Message(catalog.Merge(messages.Vietnamese())))
}
