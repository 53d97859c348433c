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

package manager

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/contiv/libOpenflow/openflow13"
	"github.com/contiv/libOpenflow/util"
)

// messageStream frames and parses OpenFlow messages on one switch
// connection. Sends may come from multiple goroutines and are serialized;
// Receive is only called from the connection's receive loop.
type messageStream struct {
	conn      net.Conn
	sendMutex sync.Mutex
}

func newMessageStream(conn net.Conn) *messageStream {
	return &messageStream{conn: conn}
}

// Send marshals a message and writes it to the connection
func (m *messageStream) Send(msg util.Message) error {
	data, err := msg.MarshalBinary()
	if err != nil {
		return err
	}

	m.sendMutex.Lock()
	defer m.sendMutex.Unlock()
	_, err = m.conn.Write(data)
	return err
}

// Receive blocks until one complete message has been read and parsed.
// Bytes 2-3 of the OpenFlow header carry the total message length.
func (m *messageStream) Receive() (util.Message, error) {
	hdr := make([]byte, 4)
	if _, err := io.ReadFull(m.conn, hdr); err != nil {
		return nil, err
	}

	length := int(binary.BigEndian.Uint16(hdr[2:]))
	if length < 4 {
		return nil, fmt.Errorf("invalid openflow message length %d", length)
	}

	buf := make([]byte, length)
	copy(buf, hdr)
	if _, err := io.ReadFull(m.conn, buf[4:]); err != nil {
		return nil, err
	}

	if buf[0] != openflow13.VERSION {
		return nil, fmt.Errorf("unsupported openflow version 0x%x", buf[0])
	}
	return openflow13.Parse(buf)
}

func (m *messageStream) RemoteAddr() net.Addr {
	return m.conn.RemoteAddr()
}

func (m *messageStream) Close() error {
	return m.conn.Close()
}
