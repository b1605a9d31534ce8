// Command stream-to-s3 streams data from stdin or a file into an S3 object
// via multipart upload and verifies the result against the backend's
// composite ETag.
//
// Example usage:
//
//	tar -C / -cpjO /home | stream-to-s3 -k keyfile -b some-bucket -o some-obj
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/docker/go-units"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/urfave/cli/v2"

	streamtos3 "github.com/jgru/stream-to-s3"
	"github.com/jgru/stream-to-s3/keyfile"
	"github.com/jgru/stream-to-s3/streamtypes"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		// Non-ExitCoder errors (urfave handles ExitCoders itself).
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "stream-to-s3",
		Usage:     "store data from stdin or a file as an S3 object via multipart upload",
		ArgsUsage: "[FILE | -]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "keyfile",
				Aliases:  []string{"k"},
				Usage:    "file that contains <ACCESS_KEY_ID>:<SECRET_KEY> for S3 access",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "bucket",
				Aliases:  []string{"b"},
				Usage:    "name of the target bucket",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "obj",
				Aliases:  []string{"o"},
				Usage:    "name of the object to write",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "chunksize",
				Aliases: []string{"c"},
				Usage:   "part size, e.g. 8M or 64MiB",
				Value:   "8M",
			},
			&cli.IntFlag{
				Name:    "secs-wait",
				Aliases: []string{"s"},
				Usage:   "seconds to wait before retrying a failed part",
				Value:   5,
			},
			&cli.IntFlag{
				Name:    "retry",
				Aliases: []string{"r"},
				Usage:   "upload attempts per part until giving up",
				Value:   5,
			},
			&cli.StringFlag{
				Name:    "endpoint",
				Aliases: []string{"e"},
				Usage:   "custom S3 endpoint (path-style), e.g. for MinIO",
				EnvVars: []string{"S3_ENDPOINT"},
			},
			&cli.StringFlag{
				Name:    "region",
				Usage:   "AWS region of the bucket",
				Value:   "us-east-1",
				EnvVars: []string{"AWS_REGION"},
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "print debug information",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	logger := log.NewLogger()
	logger.EnableDebugLog(c.Bool("debug"))

	if c.NArg() > 1 {
		return cli.Exit("expected at most one input argument", exitUsage)
	}
	infile := c.Args().First()
	if infile == "" {
		infile = "-"
	}

	useStdin, err := selectInput(infile, stdinIsTerminal())
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	chunkSize, err := units.RAMInBytes(c.String("chunksize"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid chunk size %q: %v", c.String("chunksize"), err), exitUsage)
	}

	keyPath, err := filepath.Abs(c.String("keyfile"))
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	creds, err := keyfile.Parse(billy.NewOSFS("/"), keyPath)
	if err != nil {
		return cli.Exit(err.Error(), exitCode(err))
	}

	client, err := streamtos3.New(
		streamtos3.WithRegion(c.String("region")),
		streamtos3.WithCredentials(creds.AccessKeyID, creds.SecretAccessKey),
		streamtos3.WithEndpoint(c.String("endpoint")),
		streamtos3.WithLogger(logger),
	)
	if err != nil {
		return cli.Exit(err.Error(), exitConnection)
	}

	ctx := c.Context
	bucket := c.String("bucket")
	obj := c.String("obj")

	ok, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return cli.Exit(err.Error(), exitCode(err))
	}
	if !ok {
		return cli.Exit(fmt.Sprintf("bucket %s is not available", bucket), exitBucketUnavailable)
	}

	exists, err := client.ObjectExists(ctx, bucket, obj)
	if err != nil {
		return cli.Exit(err.Error(), exitCode(err))
	}
	if exists {
		return cli.Exit(fmt.Sprintf("object %s already exists in bucket %s", obj, bucket), exitObjectExists)
	}

	opts := []streamtypes.StreamOption{
		streamtos3.WithChunkSize(chunkSize),
		streamtos3.WithMaxRetries(c.Int("retry")),
		streamtos3.WithRetryDelay(time.Duration(c.Int("secs-wait")) * time.Second),
	}

	var result *streamtypes.StreamResult
	if useStdin {
		logger.Infof("reading from stdin")
		result, err = client.Stream(ctx, bucket, obj, os.Stdin, opts...)
	} else {
		var path string
		path, err = filepath.Abs(infile)
		if err != nil {
			return cli.Exit(err.Error(), exitUsage)
		}
		logger.Infof("reading from %s", infile)
		result, err = client.StreamFile(ctx, bucket, obj, path, opts...)
	}
	if err != nil {
		return cli.Exit(err.Error(), exitCode(err))
	}

	logger.Infof("read %s with MD5 %s", units.BytesSize(float64(result.Size)), result.MD5)
	logger.Infof("stored data as object %s in bucket %s", obj, bucket)

	verified, err := client.Verify(ctx, bucket, obj, result.Parts)
	if verified != nil {
		logger.Infof("local  etag: %s", verified.LocalETag)
		logger.Infof("remote etag: %s", verified.RemoteETag)
	}
	if err != nil {
		return cli.Exit(err.Error(), exitCode(err))
	}

	logger.Donef("uploaded and verified %d parts in %v", len(result.Parts), result.Duration.Round(time.Millisecond))
	return nil
}

// selectInput decides between stdin and file input. Exactly one source must
// supply data: an interactive terminal cannot be the stdin source, and piped
// stdin combined with a file argument is ambiguous.
func selectInput(infile string, interactive bool) (useStdin bool, err error) {
	if infile == "-" {
		if interactive {
			return false, fmt.Errorf("supply data via stdin or a file path")
		}
		return true, nil
	}
	if !interactive {
		return false, fmt.Errorf("received data via stdin and a file argument, supply exactly one")
	}
	return false, nil
}

func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
