package main

import (
	"github.com/spf13/cobra"

	"github.com/timmy/uthos/objectstorage"
)

func newPolicyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Manage the public access policy of buckets",
	}
	cmd.AddCommand(&cobra.Command{
		Use:       "set <bucket> <public|private|upload>",
		Short:     "Set a bucket's policy",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(objectstorage.PolicyPublic), string(objectstorage.PolicyPrivate), string(objectstorage.PolicyUpload)},
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			if err := client.UpdatePolicy(cmd.Context(), a.dc(), args[0], objectstorage.Policy(args[1])); err != nil {
				return err
			}
			return a.message("policy of %s set to %s", args[0], args[1])
		},
	})
	return cmd
}

func newPermissionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permission",
		Short: "Grant access keys permissions on buckets",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <bucket> <access-key> <read|write|full|none>",
		Short: "Set the permission of an access key on a bucket; none revokes it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			level := objectstorage.PermissionLevel(args[2])
			if err := client.UpdatePermission(cmd.Context(), a.dc(), args[0], level, args[1]); err != nil {
				return err
			}
			return a.message("permission of %s on %s set to %s", args[1], args[0], level)
		},
	})
	return cmd
}
