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
	"errors"
	"fmt"
	"net"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/contiv/libOpenflow/common"
	"github.com/contiv/libOpenflow/openflow13"
	"github.com/contiv/libOpenflow/util"
)

// ErrSwitchNotConnected is returned when a rule operation is attempted
// before the programmable switch has completed its handshake
var ErrSwitchNotConnected = errors.New("switch not connected")

// Struct to allow NewOpenFlowClient to receive all or some parameters
type OpenFlowParams struct {
	// Address the switch dials into, e.g. ":6633"
	ListenAddr string
	// Flow table rules are installed in
	TableID uint8
}

// Client that the controller uses to program the switch's flow table.
// The switch connects to us (openflow is controller-passive); submissions
// fail with ErrSwitchNotConnected until the hello/features handshake is done.
type OpenFlowClient struct {
	params OpenFlowParams

	mutex  sync.Mutex
	stream *messageStream
	dpid   net.HardwareAddr
}

// Sets up an interface with the programmable switch
func NewOpenFlowClient(params *OpenFlowParams) *OpenFlowClient {
	return &OpenFlowClient{
		params: *params,
	}
}

// Listen accepts switch connections and serves them until the listener
// fails. Blocks; run it on its own goroutine.
func (oClient *OpenFlowClient) Listen() error {
	listener, err := net.Listen("tcp", oClient.params.ListenAddr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %v", oClient.params.ListenAddr, err)
	}
	defer listener.Close()

	log.Infof("Listening for switch connections on %s", oClient.params.ListenAddr)
	for {
		conn, err := listener.Accept()
		if err != nil {
			return err
		}
		go oClient.handleConnection(conn)
	}
}

// Connected returns whether a switch has completed its handshake
func (oClient *OpenFlowClient) Connected() bool {
	oClient.mutex.Lock()
	defer oClient.mutex.Unlock()
	return oClient.stream != nil
}

// Installs a forwarding rule: match on matchPort, output to each action port
func (oClient *OpenFlowClient) SubmitRule(matchPort uint32, actionPorts []uint32, priority uint16) error {
	stream := oClient.currentStream()
	if stream == nil {
		return ErrSwitchNotConnected
	}

	flowMod := openflow13.NewFlowMod()
	flowMod.TableId = oClient.params.TableID
	flowMod.Priority = priority
	flowMod.Command = openflow13.FC_ADD
	flowMod.Match = *inPortMatch(matchPort)

	instr := openflow13.NewInstrApplyActions()
	for _, port := range actionPorts {
		instr.AddAction(openflow13.NewActionOutput(port), false)
	}
	flowMod.AddInstruction(instr)

	log.Debugf("Submitting flow: in_port=%d output=%v priority=%d",
		matchPort, actionPorts, priority)
	if err := stream.Send(flowMod); err != nil {
		return fmt.Errorf("rule submission for port %d failed: %w", matchPort, err)
	}
	return nil
}

// Removes any rule matching traffic entering matchPort
func (oClient *OpenFlowClient) RemoveRule(matchPort uint32) error {
	stream := oClient.currentStream()
	if stream == nil {
		return ErrSwitchNotConnected
	}

	flowMod := openflow13.NewFlowMod()
	flowMod.TableId = oClient.params.TableID
	flowMod.Command = openflow13.FC_DELETE
	flowMod.OutPort = openflow13.P_ANY
	flowMod.OutGroup = openflow13.OFPG_ANY
	flowMod.Match = *inPortMatch(matchPort)

	log.Debugf("Removing flows: in_port=%d", matchPort)
	if err := stream.Send(flowMod); err != nil {
		return fmt.Errorf("rule removal for port %d failed: %w", matchPort, err)
	}
	return nil
}

// Serves one switch connection: version negotiation, then the receive loop
func (oClient *OpenFlowClient) handleConnection(conn net.Conn) {
	stream := newMessageStream(conn)
	log.Infof("Switch connection from %s", stream.RemoteAddr())

	hello, err := common.NewHello(openflow13.VERSION)
	if err != nil {
		stream.Close()
		return
	}
	if err := stream.Send(hello); err != nil {
		log.Errorf("Could not send hello to %s: %v", stream.RemoteAddr(), err)
		stream.Close()
		return
	}

	for {
		msg, err := stream.Receive()
		if err != nil {
			log.Warningf("Switch connection %s closed: %v", stream.RemoteAddr(), err)
			oClient.dropSwitch(stream)
			stream.Close()
			return
		}
		oClient.handleMessage(stream, msg)
	}
}

func (oClient *OpenFlowClient) handleMessage(stream *messageStream, msg util.Message) {
	switch t := msg.(type) {
	case *common.Hello:
		oClient.handleHello(stream, t.Version)
	case *common.Header:
		switch t.Header().Type {
		case openflow13.Type_Hello:
			oClient.handleHello(stream, t.Header().Version)
		case openflow13.Type_EchoRequest:
			stream.Send(openflow13.NewEchoReply())
		}
	case *openflow13.SwitchFeatures:
		oClient.adoptSwitch(stream, t.DPID)
	case *openflow13.ErrorMsg:
		log.Errorf("Switch reported error: type %d code %d", t.Type, t.Code)
	}
}

// A hello of the right version completes negotiation; request features so
// we learn the switch's datapath id
func (oClient *OpenFlowClient) handleHello(stream *messageStream, version uint8) {
	if version != openflow13.VERSION {
		log.Errorf("Switch requested unsupported openflow version 0x%x", version)
		stream.Close()
		return
	}
	stream.Send(openflow13.NewFeaturesRequest())
}

func (oClient *OpenFlowClient) adoptSwitch(stream *messageStream, dpid net.HardwareAddr) {
	oClient.mutex.Lock()
	defer oClient.mutex.Unlock()

	if oClient.stream != nil && oClient.stream != stream {
		log.Warningf("Replacing existing switch connection %s with %s",
			oClient.stream.RemoteAddr(), stream.RemoteAddr())
		oClient.stream.Close()
	}
	oClient.stream = stream
	oClient.dpid = dpid
	log.Infof("Switch connected: %v", dpid)
}

func (oClient *OpenFlowClient) dropSwitch(stream *messageStream) {
	oClient.mutex.Lock()
	defer oClient.mutex.Unlock()

	if oClient.stream == stream {
		log.Infof("Switch disconnected: %v", oClient.dpid)
		oClient.stream = nil
		oClient.dpid = nil
	}
}

func (oClient *OpenFlowClient) currentStream() *messageStream {
	oClient.mutex.Lock()
	defer oClient.mutex.Unlock()
	return oClient.stream
}

func inPortMatch(port uint32) *openflow13.Match {
	match := openflow13.NewMatch()
	match.AddField(*openflow13.NewInPortField(port))
	return match
}
