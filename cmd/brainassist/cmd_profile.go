package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/brainassist/internal/app"
	"github.com/user/brainassist/internal/modes"
)

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileSetCmd)

	profileSetCmd.Flags().String("name", "", "display name")
	profileSetCmd.Flags().String("bio", "", "short bio shared with the assistant")
	profileSetCmd.Flags().String("avatar", "", "avatar id ("+strings.Join(modes.Avatars, ", ")+")")
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit the user profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			p, err := shell.Profile(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Name:    %s\nAvatar:  %s\nBio:     %s\nUpdated: %s\nVersions: %d\n",
				p.Name, p.AvatarID, p.Bio, p.UpdatedAt.Format("2006-01-02 15:04"), len(p.History))
			return nil
		})
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the profile; unset flags keep their value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withShell(cmd, func(ctx context.Context, shell *app.Shell) error {
			p, err := shell.Profile(ctx)
			if err != nil {
				return err
			}
			name, bio, avatar := p.Name, p.Bio, p.AvatarID
			if cmd.Flags().Changed("name") {
				name, _ = cmd.Flags().GetString("name")
			}
			if cmd.Flags().Changed("bio") {
				bio, _ = cmd.Flags().GetString("bio")
			}
			if cmd.Flags().Changed("avatar") {
				avatar, _ = cmd.Flags().GetString("avatar")
			}
			updated, err := shell.UpdateProfile(ctx, name, bio, avatar)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Profile saved for %s.\n", updated.Name)
			return nil
		})
	},
}
