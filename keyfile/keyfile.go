// Package keyfile parses credential files of the form
// <ACCESS_KEY_ID>:<SECRET_KEY>. It belongs to the boundary layer around the
// streaming core: the core only ever sees the parsed credential pair.
package keyfile

import (
	"fmt"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	s3errors "github.com/jgru/stream-to-s3/errors"
)

// Credentials is an access key pair read from a keyfile. The values are
// opaque to this module and handed to the SDK's static credential provider.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// Parse reads a keyfile through the given filesystem and returns the
// credential pair. Surrounding whitespace is ignored; the remaining content
// must be exactly two non-empty fields separated by a single colon.
//
// An unreadable file yields errors.ErrKeyfileRead, malformed content yields
// errors.ErrKeyfileFormat, so callers can report the two cases distinctly.
func Parse(fsys fs.Filesystem, path string) (Credentials, error) {
	raw, err := fsys.ReadFile(path)
	if err != nil {
		return Credentials{}, s3errors.NewError("keyfile",
			fmt.Errorf("%w: %s: %w", s3errors.ErrKeyfileRead, path, err))
	}

	content := strings.Trim(string(raw), " \t\n\r")
	fields := strings.Split(content, ":")
	if len(fields) != 2 || fields[0] == "" || fields[1] == "" {
		return Credentials{}, s3errors.NewError("keyfile",
			fmt.Errorf("%w: %s", s3errors.ErrKeyfileFormat, path))
	}

	return Credentials{
		AccessKeyID:     fields[0],
		SecretAccessKey: fields[1],
	}, nil
}
