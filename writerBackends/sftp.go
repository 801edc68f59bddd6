package writerbackends

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"strings"
	"time"

	"vodpacker/logger"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

const sftpDialTimeout = 10 * time.Second

// UploadToSFTPWithCreds writes one package file to a remote host over SFTP.
// accessInfo must carry host, user and key, plus either password or
// privateKey (base64 or raw PEM); port defaults to 22. The remote path is
// baseDir joined with the package key.
func UploadToSFTPWithCreds(ctx context.Context, accessInfo map[string]string, reader io.Reader) error {
	if accessInfo["host"] == "" || accessInfo["user"] == "" || accessInfo["key"] == "" {
		return fmt.Errorf("sftp destination requires host, user and key")
	}
	remotePath := path.Join(accessInfo["baseDir"], accessInfo["key"])

	client, closeAll, err := dialSFTP(ctx, accessInfo)
	if err != nil {
		return err
	}
	defer closeAll()

	if err := ensureRemoteDir(client, path.Dir(remotePath)); err != nil {
		return err
	}

	dst, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create remote file %s: %w", remotePath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, reader); err != nil {
		return fmt.Errorf("write remote file %s: %w", remotePath, err)
	}

	logger.Debugf("uploaded '%s' via sftp", remotePath)
	return nil
}

// dialSFTP establishes the TCP connection, SSH handshake and SFTP session.
// The returned func tears all three down.
func dialSFTP(ctx context.Context, accessInfo map[string]string) (*sftp.Client, func(), error) {
	auth, err := sshAuth(accessInfo)
	if err != nil {
		return nil, nil, err
	}

	port := accessInfo["port"]
	if port == "" {
		port = "22"
	}
	addr := net.JoinHostPort(accessInfo["host"], port)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, &ssh.ClientConfig{
		User:            accessInfo["user"],
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         sftpDialTimeout,
	})
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	sshClient := ssh.NewClient(sshConn, chans, reqs)

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, nil, fmt.Errorf("open sftp session with %s: %w", addr, err)
	}

	return client, func() {
		client.Close()
		sshClient.Close()
	}, nil
}

// sshAuth picks the auth method from accessInfo: privateKey (base64 with
// raw-PEM fallback) wins over password.
func sshAuth(accessInfo map[string]string) (ssh.AuthMethod, error) {
	if pk := accessInfo["privateKey"]; pk != "" {
		keyBytes, err := base64.StdEncoding.DecodeString(pk)
		if err != nil {
			keyBytes = []byte(pk)
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("parse sftp private key: %w", err)
		}
		return ssh.PublicKeys(signer), nil
	}
	if pw := accessInfo["password"]; pw != "" {
		return ssh.Password(pw), nil
	}
	return nil, fmt.Errorf("sftp destination requires password or privateKey")
}

// ensureRemoteDir creates dir and any missing parents, segment by segment;
// SFTP has no MkdirAll.
func ensureRemoteDir(client *sftp.Client, dir string) error {
	if dir == "" || dir == "." || dir == "/" {
		return nil
	}

	cur := ""
	if strings.HasPrefix(dir, "/") {
		cur = "/"
	}
	for _, seg := range strings.Split(dir, "/") {
		if seg == "" {
			continue
		}
		cur = path.Join(cur, seg)
		_, err := client.Stat(cur)
		if err == nil {
			continue
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("stat remote dir %s: %w", cur, err)
		}
		if err := client.Mkdir(cur); err != nil {
			return fmt.Errorf("create remote dir %s: %w", cur, err)
		}
	}
	return nil
}
