package main

import (
	"github.com/spf13/cobra"

	"github.com/timmy/uthos/objectstorage"
)

func newKeyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "key",
		Aliases: []string{"keys", "accesskey"},
		Short:   "Manage access keys",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List access keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			keys, err := client.ListAccessKeys(cmd.Context(), a.dc())
			if err != nil {
				return err
			}
			return a.render(keys, []string{"NAME", "ACCESS KEY", "STATUS", "CREATED"}, func(add func(...string)) {
				for _, k := range keys {
					add(k.Name, orDash(k.AccessKey), orDash(k.Status), orDash(k.CreatedAt))
				}
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create an access key; the secret is shown only once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			k, err := client.CreateAccessKey(cmd.Context(), a.dc(), args[0])
			if err != nil {
				return err
			}
			return a.render(k, []string{"NAME", "ACCESS KEY", "SECRET KEY"}, func(add func(...string)) {
				add(k.Name, orDash(k.AccessKey), orDash(k.SecretKey))
			})
		},
	})

	for _, status := range []objectstorage.AccessKeyStatus{
		objectstorage.AccessKeyEnable,
		objectstorage.AccessKeyDisable,
		objectstorage.AccessKeyRemove,
	} {
		status := status
		cmd.AddCommand(&cobra.Command{
			Use:   string(status) + " <name>",
			Short: "Set an access key to " + string(status),
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := a.client()
				if err != nil {
					return err
				}
				if err := client.ModifyAccessKey(cmd.Context(), a.dc(), args[0], status); err != nil {
					return err
				}
				return a.message("access key %s: %s", args[0], status)
			},
		})
	}

	return cmd
}
