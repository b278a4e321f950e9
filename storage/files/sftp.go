package files

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/thaimooc/platform/core"
)

// SFTPConfig connects the mirror to a remote host serving the public CDN
// directory.
type SFTPConfig struct {
	Addr     string
	User     string
	Password string
	Dir      string
}

// mirrorStore wraps a primary FileStore and copies every saved file to a
// remote host over SFTP. Reads always come from the primary; a failed mirror
// upload is logged, not returned, so uploads keep working when the remote
// host is down.
type mirrorStore struct {
	primary core.FileStore
	conf    SFTPConfig
	logger  core.Logger
}

var _ core.FileStore = (*mirrorStore)(nil) // interface compliance check

func NewSFTPMirror(primary core.FileStore, conf SFTPConfig, logger core.Logger) core.FileStore {
	return &mirrorStore{primary: primary, conf: conf, logger: logger}
}

func (s *mirrorStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	stored, err := s.primary.Save(ctx, name, r)
	if err != nil {
		return "", err
	}
	go s.mirror(stored)
	return stored, nil
}

func (s *mirrorStore) Open(name string) (io.ReadCloser, string, error) {
	return s.primary.Open(name)
}

func (s *mirrorStore) mirror(name string) {
	src, _, err := s.primary.Open(name)
	if err != nil {
		s.logger.Error(fmt.Sprintf("mirroring %s: reading local copy: %v", name, err), err)
		return
	}
	defer func() { _ = src.Close() }()

	if err = s.upload(name, src); err != nil {
		s.logger.Error(fmt.Sprintf("mirroring %s: %v", name, err), err)
	}
}

func (s *mirrorStore) upload(name string, src io.Reader) error {
	sshConf := &ssh.ClientConfig{
		User: s.conf.User,
		Auth: []ssh.AuthMethod{ssh.Password(s.conf.Password)},
		// TODO: verify against known_hosts once the CDN host settles
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         20 * time.Second,
	}
	sshClient, err := ssh.Dial("tcp", s.conf.Addr, sshConf)
	if err != nil {
		return errors.Wrap(err, "dialing")
	}
	defer func() { _ = sshClient.Close() }()

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		return errors.Wrap(err, "opening sftp session")
	}
	defer func() { _ = client.Close() }()

	if err = client.MkdirAll(s.conf.Dir); err != nil {
		return errors.Wrap(err, "creating remote dir")
	}
	dst, err := client.Create(path.Join(s.conf.Dir, name))
	if err != nil {
		return errors.Wrap(err, "creating remote file")
	}
	defer func() { _ = dst.Close() }()

	_, err = io.Copy(dst, src)
	return errors.Wrap(err, "copying")
}
