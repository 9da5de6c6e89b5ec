package main

import (
	"context"

	"github.com/hast-app/hastauth"
	"github.com/spf13/cobra"
)

func newAvatarCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "avatar",
		Short: "Upload or remove the profile picture",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <image.jpg>",
			Short: "Upload a JPEG as the new avatar",
			Args:  cobra.ExactArgs(1),
			RunE: runWithClient(a, func(ctx context.Context, c *hastauth.Client, args []string) hastauth.Result {
				return c.UpdateAvatar(ctx, hastauth.Image{Path: args[0]})
			}),
		},
		&cobra.Command{
			Use:   "remove",
			Short: "Delete the current avatar",
			Args:  cobra.NoArgs,
			RunE: runWithClient(a, func(ctx context.Context, c *hastauth.Client, _ []string) hastauth.Result {
				return c.RemoveAvatar(ctx)
			}),
		},
	)
	return cmd
}

func newAttendanceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Submit, remove and list attendance records",
	}

	var scheduleID, alias string
	add := &cobra.Command{
		Use:   "add <photo.jpg>",
		Short: "Check in for a schedule with a photo",
		Args:  cobra.ExactArgs(1),
		RunE: runWithClient(a, func(ctx context.Context, c *hastauth.Client, args []string) hastauth.Result {
			return c.AddAttendance(ctx, hastauth.Image{Path: args[0]}, scheduleID, alias)
		}),
	}
	add.Flags().StringVar(&scheduleID, "schedule", "", "schedule id (required)")
	add.Flags().StringVar(&alias, "alias", "", "file alias shown in the backend")
	_ = add.MarkFlagRequired("schedule")

	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Delete an attendance record",
			Args:  cobra.ExactArgs(1),
			RunE: runWithClient(a, func(ctx context.Context, c *hastauth.Client, args []string) hastauth.Result {
				return c.RemoveAttendance(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List your attendance records",
			Args:  cobra.NoArgs,
			RunE: runWithClient(a, func(ctx context.Context, c *hastauth.Client, _ []string) hastauth.Result {
				return c.GetMyAttendance(ctx)
			}),
		},
	)
	return cmd
}

func newClassesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "Browse the classes you teach",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List classes taught by the signed-in user",
			Args:  cobra.NoArgs,
			RunE: runWithClient(a, func(ctx context.Context, c *hastauth.Client, _ []string) hastauth.Result {
				return c.GetMyClasses(ctx)
			}),
		},
		&cobra.Command{
			Use:   "schedule <class-code>",
			Short: "Show the schedule configuration of a class",
			Args:  cobra.ExactArgs(1),
			RunE: runWithClient(a, func(ctx context.Context, c *hastauth.Client, args []string) hastauth.Result {
				return c.GetClassSchedule(ctx, args[0])
			}),
		},
	)
	return cmd
}
