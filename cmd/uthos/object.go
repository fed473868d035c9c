package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/timmy/uthos/objectstorage"
)

func newDirCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dir",
		Aliases: []string{"directory"},
		Short:   "Create and delete directories in a bucket",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create <bucket> <path>",
		Short: "Create a directory, including missing parents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			if err := client.CreateDirectory(cmd.Context(), a.dc(), args[0], args[1]); err != nil {
				return err
			}
			return a.message("directory %s created in %s", strings.Trim(args[1], "/"), args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <bucket> <path>",
		Short: "Delete a directory and its contents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			if err := client.DeleteDirectory(cmd.Context(), a.dc(), args[0], args[1]); err != nil {
				return err
			}
			return a.message("directory %s deleted from %s", strings.Trim(args[1], "/"), args[0])
		},
	})

	return cmd
}

func newFileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "file",
		Aliases: []string{"files", "object"},
		Short:   "Upload, list, share and delete files",
	}
	cmd.AddCommand(
		newFileUploadCmd(a),
		newFilePutCmd(a),
		newFileListCmd(a),
		newFileURLCmd(a),
		newFileGetCmd(a),
		&cobra.Command{
			Use:   "delete <bucket> <path>",
			Short: "Delete a file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := a.client()
				if err != nil {
					return err
				}
				if err := client.DeleteFile(cmd.Context(), a.dc(), args[0], args[1]); err != nil {
					return err
				}
				return a.message("%s deleted from %s", strings.TrimLeft(args[1], "/"), args[0])
			},
		},
	)
	return cmd
}

func newFileUploadCmd(a *app) *cobra.Command {
	var (
		dir         string
		as          string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "upload <bucket> <local-file>...",
		Short: "Upload local files into a bucket directory",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, files := args[0], args[1:]
			if as != "" && len(files) > 1 {
				return fmt.Errorf("--as needs exactly one file, got %d", len(files))
			}
			client, err := a.client()
			if err != nil {
				return err
			}

			var uploaded atomic.Int64
			p := pool.New().WithContext(cmd.Context()).WithMaxGoroutines(max(concurrency, 1))
			for _, local := range files {
				name := filepath.Base(local)
				if as != "" {
					name = as
				}
				target := objectstorage.JoinObjectPath(dir, name)
				p.Go(func(ctx context.Context) error {
					if err := uploadLocal(ctx, client, a.dc(), bucket, local, target); err != nil {
						return fmt.Errorf("%s: %w", local, err)
					}
					uploaded.Add(1)
					a.log.WithField("object", target).Debug("uploaded")
					return nil
				})
			}
			err = p.Wait()
			if msgErr := a.message("%d of %d files uploaded to %s", uploaded.Load(), len(files), bucket); err == nil {
				err = msgErr
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "target directory inside the bucket")
	cmd.Flags().StringVar(&as, "as", "", "object name for a single file (default: local base name)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "parallel uploads")
	return cmd
}

func uploadLocal(ctx context.Context, client *objectstorage.Client, dc, bucket, local, target string) error {
	f, err := os.Open(local)
	if err != nil {
		return err
	}
	defer f.Close()
	return client.UploadFile(ctx, dc, bucket, objectstorage.FromFile(f), target)
}

func newFilePutCmd(a *app) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "put <bucket> <path>",
		Short: "Store --data, or stdin, at path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := []byte(data)
			if !cmd.Flags().Changed("data") {
				var err error
				if content, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			dir, name := objectstorage.SplitObjectPath(args[1])
			if err := client.PutObject(cmd.Context(), a.dc(), args[0], name, content, dir); err != nil {
				return err
			}
			return a.message("%s stored in %s (%d bytes)", objectstorage.JoinObjectPath(dir, name), args[0], len(content))
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "content to store")
	return cmd
}

func newFileListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <bucket> [dir]",
		Short: "List a bucket directory",
		Long: `List a bucket directory. The hosted service has been seen returning an
empty listing for buckets that hold objects, so an empty result does not
prove the bucket is empty.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			var dir string
			if len(args) == 2 {
				dir = args[1]
			}
			entries, err := client.ListObjectsIn(cmd.Context(), a.dc(), args[0], dir)
			if err != nil {
				return err
			}
			return a.render(entries, []string{"NAME", "TYPE", "SIZE", "MODIFIED"}, func(add func(...string)) {
				for _, e := range entries {
					size := "-"
					if !e.IsDir() {
						size = humanBytes(e.Size)
					}
					add(e.Name, orDash(e.Type), size, orDash(e.ModifiedAt))
				}
			})
		},
	}
}

func newFileURLCmd(a *app) *cobra.Command {
	var expire string
	cmd := &cobra.Command{
		Use:   "url <bucket> <path>",
		Short: "Print a sharable download link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			link, err := client.GetSharableURL(cmd.Context(), a.dc(), args[0], args[1], expire)
			if err != nil {
				return err
			}
			if a.output == "json" {
				return a.render(map[string]string{"url": link, "expire": expire}, nil, nil)
			}
			_, err = fmt.Fprintln(a.out, link)
			return err
		},
	}
	cmd.Flags().StringVarP(&expire, "expire", "e", objectstorage.DefaultObjectExpiry,
		"link lifetime: <n>s|m|h|d|M|y or never (sent as 1y)")
	return cmd
}

func newFileGetCmd(a *app) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "get <bucket> <path>",
		Short: "Download a file through a short lived link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			link, err := client.GetObject(cmd.Context(), a.dc(), args[0], args[1])
			if err != nil {
				return err
			}
			return download(cmd.Context(), link, outPath, a.out)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "O", "", "write to this file instead of stdout")
	return cmd
}

// download fetches a sharable link. Links carry their own authorization, so
// no API credentials are sent.
func download(ctx context.Context, link, outPath string, stdout io.Writer) error {
	req := resty.New().R().SetContext(ctx)
	if outPath != "" {
		resp, err := req.SetOutput(outPath).Get(link)
		if err != nil {
			return fmt.Errorf("download failed: %w", err)
		}
		if resp.IsError() {
			_ = os.Remove(outPath)
			return fmt.Errorf("download failed: %s", resp.Status())
		}
		return nil
	}

	resp, err := req.SetDoNotParseResponse(true).Get(link)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()
	if resp.IsError() {
		return fmt.Errorf("download failed: %s", resp.Status())
	}
	_, err = io.Copy(stdout, body)
	return err
}
