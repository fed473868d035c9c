package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timmy/uthos/objectstorage"
)

func newBucketCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bucket",
		Aliases: []string{"buckets"},
		Short:   "Create, inspect and delete buckets",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the buckets of the data center",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			buckets, err := client.ListBuckets(cmd.Context(), a.dc())
			if err != nil {
				return err
			}
			return a.render(buckets, []string{"NAME", "SIZE", "POLICY", "OBJECTS", "STATUS"}, func(add func(...string)) {
				for _, b := range buckets {
					add(b.Name, gigabytes(b.Size), orDash(b.Policy), orDash(string(b.ObjectCount)), orDash(b.Status))
				}
			})
		},
	})

	var create objectstorage.CreateBucketRequest
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			create.DC, create.Name = a.dc(), args[0]
			bucket, err := client.CreateBucket(cmd.Context(), create)
			if err != nil {
				return err
			}
			if a.output == "json" {
				return a.render(bucket, nil, nil)
			}
			return a.message("bucket %s created in %s", bucket.Name, create.DC)
		},
	}
	createCmd.Flags().IntVar(&create.Size, "size", 250, "size in GB")
	createCmd.Flags().StringVar(&create.Billing, "billing", "hourly", "billing cycle")
	cmd.AddCommand(createCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "get <name>",
		Short: "Show bucket details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			b, err := client.GetBucketDetails(cmd.Context(), a.dc(), args[0])
			if err != nil {
				return err
			}
			return a.render(b, []string{"NAME", "DC", "SIZE", "POLICY", "OBJECTS", "CREATED"}, func(add func(...string)) {
				add(b.Name, orDash(b.DCSlug), gigabytes(b.Size), orDash(b.Policy), orDash(string(b.ObjectCount)), orDash(b.CreatedAt))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "exists <name>",
		Short: "Exit non-zero unless the bucket exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			ok, err := client.BucketExists(cmd.Context(), a.dc(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("bucket %s does not exist in %s", args[0], a.dc())
			}
			return a.message("bucket %s exists", args[0])
		},
	})

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a bucket and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete %s without --yes", args[0])
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			if err := client.DeleteBucket(cmd.Context(), a.dc(), args[0]); err != nil {
				return err
			}
			return a.message("bucket %s deleted", args[0])
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	cmd.AddCommand(deleteCmd)

	return cmd
}
