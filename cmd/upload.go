package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kiesman99/tilesplit/internal/splitter"
	"github.com/kiesman99/tilesplit/internal/storage"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload split tiles to an S3-compatible bucket",
	Long: `Upload every PNG in the tile directory to an S3 or S3-compatible bucket.
The bucket is created when it does not exist.

Credentials default to the usual AWS environment and shared config; --access-key
and --secret-key override them.

Examples:
  # Upload output_tiles/ to a local MinIO
  tilesplit upload --bucket sprites --endpoint http://localhost:9000 --access-key minio --secret-key minio123

  # Upload under a prefix on AWS
  tilesplit upload --bucket my-assets --prefix sheets/hero --region eu-central-1`,
	Args: cobra.NoArgs,
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().String("dir", splitter.DefaultOutputDir, "directory containing the tiles")
	uploadCmd.Flags().String("endpoint", "", "S3-compatible endpoint URL (empty for AWS)")
	uploadCmd.Flags().String("region", "us-east-1", "bucket region")
	uploadCmd.Flags().String("access-key", "", "access key ID")
	uploadCmd.Flags().String("secret-key", "", "secret access key")
	uploadCmd.Flags().String("bucket", "", "destination bucket (required)")
	uploadCmd.Flags().String("prefix", "", "key prefix for uploaded tiles")

	viper.BindPFlag("s3.dir", uploadCmd.Flags().Lookup("dir"))
	viper.BindPFlag("s3.endpoint", uploadCmd.Flags().Lookup("endpoint"))
	viper.BindPFlag("s3.region", uploadCmd.Flags().Lookup("region"))
	viper.BindPFlag("s3.access-key", uploadCmd.Flags().Lookup("access-key"))
	viper.BindPFlag("s3.secret-key", uploadCmd.Flags().Lookup("secret-key"))
	viper.BindPFlag("s3.bucket", uploadCmd.Flags().Lookup("bucket"))
	viper.BindPFlag("s3.prefix", uploadCmd.Flags().Lookup("prefix"))
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg := storage.Config{
		Endpoint:  viper.GetString("s3.endpoint"),
		Region:    viper.GetString("s3.region"),
		AccessKey: viper.GetString("s3.access-key"),
		SecretKey: viper.GetString("s3.secret-key"),
		Bucket:    viper.GetString("s3.bucket"),
		Prefix:    viper.GetString("s3.prefix"),
		Dir:       viper.GetString("s3.dir"),
	}

	if cfg.Bucket == "" {
		return fmt.Errorf("bucket is required (use --bucket)")
	}

	client, err := storage.NewClient(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	uploader := storage.NewUploader(client, log.New(progressWriter(cmd), "", log.LstdFlags))
	count, err := uploader.UploadTiles(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("uploaded %d tiles with errors: %w", count, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ %d tiles uploaded to s3://%s/%s\n", count, cfg.Bucket, storage.ObjectKey(cfg.Prefix, ""))
	return nil
}
