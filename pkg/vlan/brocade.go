/*-
 * Copyright (c) 2019, The NECOS Project Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package vlan

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/ssh"
)

// Session models one interactive CLI session to the legacy switch.
// Commands are sent as opaque multi-line text blocks; the switch side does
// not acknowledge them, so Close is the only completion signal.
type Session interface {
	Send(commandText string) error
	Close() error
}

// DialFunc opens a session to the legacy switch
type DialFunc func() (Session, error)

// Struct to allow NewBrocadeDialer to receive all or some parameters
type BrocadeParams struct {
	Host     string
	Port     int
	Username string
	Password string
	// Timeout for establishing the SSH connection
	ConnectTimeout time.Duration
}

// brocadeSession is an interactive shell on the Brocade switch over SSH
type brocadeSession struct {
	client *ssh.Client
	sess   *ssh.Session
	stdin  io.WriteCloser
}

// NewBrocadeDialer returns a DialFunc opening password-authenticated SSH
// shells on the legacy switch. One session per port-touching operation; the
// channel does not tolerate interleaved use.
func NewBrocadeDialer(params *BrocadeParams) DialFunc {
	return func() (Session, error) {
		config := &ssh.ClientConfig{
			User: params.Username,
			Auth: []ssh.AuthMethod{
				ssh.Password(params.Password),
			},
			// Switch host keys are not provisioned in this deployment
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
			Timeout:         params.ConnectTimeout,
		}

		addr := fmt.Sprintf("%s:%d", params.Host, params.Port)
		client, err := ssh.Dial("tcp", addr, config)
		if err != nil {
			return nil, fmt.Errorf("could not connect to %s: %v", addr, err)
		}

		sess, err := client.NewSession()
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("could not open session on %s: %v", addr, err)
		}

		// The Brocade CLI wants an interactive terminal
		modes := ssh.TerminalModes{
			ssh.ECHO: 0,
		}
		if err := sess.RequestPty("vt100", 40, 80, modes); err != nil {
			sess.Close()
			client.Close()
			return nil, fmt.Errorf("could not request pty on %s: %v", addr, err)
		}

		stdin, err := sess.StdinPipe()
		if err != nil {
			sess.Close()
			client.Close()
			return nil, fmt.Errorf("could not open stdin on %s: %v", addr, err)
		}
		if err := sess.Shell(); err != nil {
			sess.Close()
			client.Close()
			return nil, fmt.Errorf("could not start shell on %s: %v", addr, err)
		}

		return &brocadeSession{
			client: client,
			sess:   sess,
			stdin:  stdin,
		}, nil
	}
}

func (bs *brocadeSession) Send(commandText string) error {
	_, err := io.WriteString(bs.stdin, commandText)
	return err
}

func (bs *brocadeSession) Close() error {
	bs.stdin.Close()
	bs.sess.Close()
	return bs.client.Close()
}
