package ssh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/imamik/seedmaster/internal/provisioning"
)

// Transfer implements provisioning.RemoteChannel. remotePath names the
// target file; a leading "~/" resolves against the login directory.
func (c *Channel) Transfer(ctx context.Context, localPath, host, remotePath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", localPath, err)
	}

	target := remotePathFor(remotePath)
	return c.withClient(ctx, host, func(client *ssh.Client) error {
		sc, err := sftp.NewClient(client)
		if err != nil {
			return fmt.Errorf("failed to start sftp on %s: %w", host, err)
		}
		defer func() { _ = sc.Close() }()

		dst, err := sc.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
		if err != nil {
			return transferError(host, target, err)
		}
		if _, err := io.Copy(dst, f); err != nil {
			_ = dst.Close()
			return transferError(host, target, err)
		}
		if err := dst.Chmod(info.Mode().Perm()); err != nil {
			_ = dst.Close()
			return transferError(host, target, err)
		}
		if err := dst.Close(); err != nil {
			return transferError(host, target, err)
		}
		return nil
	})
}

// remotePathFor turns "~/dir/file" into "dir/file". The sftp server
// resolves relative paths against the login directory.
func remotePathFor(p string) string {
	if p == "~" {
		return "."
	}
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		return rest
	}
	return p
}

// transferError maps an sftp failure to the RemoteChannel error contract.
// A status answered by the remote server is a *provisioning.CommandError.
func transferError(host, target string, err error) error {
	command := "sftp put " + target

	var status *sftp.StatusError
	switch {
	case errors.As(err, &status):
		return &provisioning.CommandError{
			Host:     host,
			Command:  command,
			ExitCode: int(status.Code),
			Output:   status.Error(),
		}
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return &provisioning.CommandError{
			Host:     host,
			Command:  command,
			ExitCode: 1,
			Output:   fmt.Sprintf("%s: %v", target, err),
		}
	}
	return fmt.Errorf("sftp transfer to %s failed: %w", host, err)
}
