package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vgv/internal/config"
	"github.com/vango-dev/vgv/internal/errors"
	"github.com/vango-dev/vgv/pkg/upload"
)

// newStore builds the configured artifact store, nil when uploads are off.
func newStore(cfg config.UploadConfig) (upload.Store, error) {
	switch cfg.Store {
	case "s3":
		client := upload.NewS3Client(upload.S3Config{
			Region:          cfg.Region,
			Endpoint:        cfg.Endpoint,
			PathStyle:       cfg.PathStyle,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			SessionToken:    cfg.SessionToken,
		})
		return upload.NewS3Store(client, cfg.Bucket,
			upload.WithPrefix(cfg.Prefix),
			upload.WithMaxSize(cfg.MaxSize),
		), nil
	case "disk":
		return upload.NewDiskStore(cfg.Dir, cfg.MaxSize)
	}
	return nil, nil
}

// publish uploads the artifact at path when key is set. A key of "." uses
// the file's base name.
func (a *app) publish(ctx context.Context, path, key string) error {
	if key == "" {
		return nil
	}
	store, err := newStore(a.cfg.Upload)
	if err != nil {
		return errors.New("E060").Wrap(err)
	}
	if store == nil {
		return errors.New("E060").
			WithDetail("--upload was given but no upload store is configured.").
			WithSuggestion("Set upload.store to s3 or disk in vgv.json.")
	}
	if key == "." {
		key = ""
	}

	loc, err := upload.File(ctx, store, path, key)
	if err != nil {
		mapped := errors.FromStreamError(err, "")
		if mapped.Code == "E900" {
			return errors.New("E060").Wrap(err)
		}
		return mapped
	}
	a.logger.Info("artifact uploaded", "output", path, "location", loc)
	a.success("Uploaded %s", loc)
	return nil
}

func (a *app) publishCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "publish <file>",
		Short: "Upload an artifact to the configured store",
		Long: `Upload a stream, player document or video to the store configured
under upload in vgv.json (s3 or disk). The content type follows the file
extension.

Examples:
  vgv publish demo.vgv
  vgv publish demo.mp4 --key releases/demo.mp4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(args[0])
			if err != nil {
				return errors.New("E140").Wrap(err)
			}
			if info.IsDir() {
				return errors.New("E140").WithDetail(args[0] + " is a directory, not a file.")
			}
			if key == "" {
				key = "."
			}
			return a.publish(cmd.Context(), args[0], key)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Object key (default: the file name)")

	return cmd
}
