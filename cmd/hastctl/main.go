// Command hastctl drives the HAST session client from a terminal: sign in,
// inspect the stored session, manage the profile and submit attendance.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	a := &app{flags: &globalFlags{}}
	err := newRootCmd(a).Execute()
	a.close()
	if err != nil {
		if !errors.Is(err, errFailedResult) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	env        string
	baseURL    string
	debug      bool
	store      string
	storePath  string
	redisAddr  string
	audit      bool
}

func newRootCmd(a *app) *cobra.Command {
	flags := a.flags

	root := &cobra.Command{
		Use:           "hastctl",
		Short:         "HAST attendance session client",
		Long:          "hastctl signs in to the HAST backend and runs profile, password, avatar, attendance and class operations with a persisted session.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "config file (default ~/.config/hastctl/config.yaml)")
	pf.StringVar(&flags.env, "env", "", "environment: development, staging or production")
	pf.StringVar(&flags.baseURL, "base-url", "", "override the backend base URL")
	pf.BoolVar(&flags.debug, "debug", false, "debug logging on stderr")
	pf.StringVar(&flags.store, "store", "", "credential store: sqlite, redis or memory")
	pf.StringVar(&flags.storePath, "store-path", "", "sqlite database path")
	pf.StringVar(&flags.redisAddr, "redis-addr", "", "redis address for --store redis")
	pf.BoolVar(&flags.audit, "audit", false, "log audit events on stderr")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newPingCmd(a),
		newProfileCmd(a),
		newPasswordCmd(a),
		newAvatarCmd(a),
		newAttendanceCmd(a),
		newClassesCmd(a),
		newDiagnoseCmd(a),
	)
	return root
}
