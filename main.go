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

package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"golang.org/x/crypto/ssh/terminal"

	"github.com/necos-project/netslice-ctlr/pkg/controller"
	"github.com/necos-project/netslice-ctlr/pkg/manager"
	"github.com/necos-project/netslice-ctlr/pkg/orchestration"
	"github.com/necos-project/netslice-ctlr/pkg/ports"
	"github.com/necos-project/netslice-ctlr/pkg/vlan"
)

var (
	// To be set by build
	version   string
	buildInfo string

	// Flag sets and supported flags
	flags         *flag.FlagSet
	globalFlags   *flag.FlagSet
	openflowFlags *flag.FlagSet
	brocadeFlags  *flag.FlagSet

	// Global
	logLevel     *string
	portConfig   *string
	apiAddr      *string
	printVersion *bool

	// OpenFlow
	ofListenAddr *string
	ofTableID    *int

	// Brocade
	brHost      *string
	brPort      *int
	brUsername  *string
	brPassword  *string
	credsDir    *string
	controlVlan *int
	settleDelay *time.Duration
)

func init() {
	flags = flag.NewFlagSet("main", flag.ContinueOnError)
	globalFlags = flag.NewFlagSet("Global", flag.ContinueOnError)
	openflowFlags = flag.NewFlagSet("OpenFlow", flag.ContinueOnError)
	brocadeFlags = flag.NewFlagSet("Brocade", flag.ContinueOnError)

	// Flag terminal wrapping
	var err error
	var width int
	fd := int(os.Stdout.Fd())
	if terminal.IsTerminal(fd) {
		width, _, err = terminal.GetSize(fd)
		if nil != err {
			width = 0
		}
	}

	// Global flags
	logLevel = globalFlags.String("log-level", "info",
		"Optional, logging level")
	portConfig = globalFlags.String("port-config", "",
		"Optional, path to the YAML port mapping file (compiled-in defaults otherwise)")
	apiAddr = globalFlags.String("api-addr", ":8080",
		"Optional, address to serve the slice API on")
	printVersion = globalFlags.Bool("version", false,
		"Optional, print version and exit")

	// OpenFlow flags
	ofListenAddr = openflowFlags.String("of-listen-addr", ":6633",
		"Optional, address the programmable switch connects to")
	ofTableID = openflowFlags.Int("of-table", 0,
		"Optional, flow table to install mesh rules in")

	// Brocade flags
	brHost = brocadeFlags.String("brocade-host", "",
		"Required, hostname or address of the legacy switch")
	brPort = brocadeFlags.Int("brocade-port", 22,
		"Optional, SSH port of the legacy switch")
	brUsername = brocadeFlags.String("brocade-username", "",
		"Optional, SSH username for the legacy switch")
	brPassword = brocadeFlags.String("brocade-password", "",
		"Optional, SSH password for the legacy switch")
	credsDir = brocadeFlags.String("credentials-directory", "",
		"Optional, directory that contains the files brocade-username and "+
			"brocade-password. To be used instead of username and password flags.")
	controlVlan = brocadeFlags.Int("control-vlan", 444,
		"Optional, control VLAN identifier on the legacy switch")
	settleDelay = brocadeFlags.Duration("settle-delay", 2*time.Second,
		"Optional, wait after sending switch commands before closing the session")

	globalFlags.Usage = func() {
		fmt.Fprintf(os.Stderr, "  Global:\n%s\n", globalFlags.FlagUsagesWrapped(width))
	}
	openflowFlags.Usage = func() {
		fmt.Fprintf(os.Stderr, "  OpenFlow:\n%s\n", openflowFlags.FlagUsagesWrapped(width))
	}
	brocadeFlags.Usage = func() {
		fmt.Fprintf(os.Stderr, "  Brocade:\n%s\n", brocadeFlags.FlagUsagesWrapped(width))
	}
	flags.AddFlagSet(globalFlags)
	flags.AddFlagSet(openflowFlags)
	flags.AddFlagSet(brocadeFlags)

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s\n", os.Args[0])
		globalFlags.Usage()
		openflowFlags.Usage()
		brocadeFlags.Usage()
	}
}

func verifyArgs() error {
	*logLevel = strings.ToLower(*logLevel)
	if _, err := log.ParseLevel(*logLevel); err != nil {
		return fmt.Errorf("Unknown log level requested: %s", *logLevel)
	}

	if len(*brHost) == 0 {
		return fmt.Errorf("Missing required Brocade host.")
	} else if (len(*brUsername) == 0 || len(*brPassword) == 0) && len(*credsDir) == 0 {
		return fmt.Errorf("Missing Brocade credentials.")
	} else if len(*brUsername) > 0 && len(*brPassword) > 0 && len(*credsDir) > 0 {
		return fmt.Errorf(
			"Please specify either credentials directory OR username/password, not both.")
	}

	return nil
}

func getCredentials() {
	if len(*credsDir) > 0 {
		var usr, pass string
		var usrBytes, passBytes []byte
		var err error
		if strings.HasSuffix(*credsDir, "/") {
			usr = *credsDir + "brocade-username"
			pass = *credsDir + "brocade-password"
		} else {
			usr = *credsDir + "/brocade-username"
			pass = *credsDir + "/brocade-password"
		}

		usrBytes, err = ioutil.ReadFile(usr)
		if err != nil {
			log.Fatalf("%v", err)
		}
		*brUsername = strings.TrimSpace(string(usrBytes))

		passBytes, err = ioutil.ReadFile(pass)
		if err != nil {
			log.Fatalf("%v", err)
		}
		*brPassword = strings.TrimSpace(string(passBytes))
	}
}

func main() {
	err := flags.Parse(os.Args)
	if nil != err {
		os.Exit(1)
	}

	if *printVersion {
		fmt.Printf("Version: %s\nBuild: %s\n", version, buildInfo)
		os.Exit(0)
	}

	err = verifyArgs()
	if nil != err {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		flags.Usage()
		os.Exit(1)
	}
	getCredentials()

	level, _ := log.ParseLevel(*logLevel)
	log.SetLevel(level)

	log.Infof("Starting: Version: %s, BuildInfo: %s", version, buildInfo)

	stopCh := make(chan struct{})

	// Load and validate the port mappings
	cfg := ports.DefaultConfig()
	if len(*portConfig) > 0 {
		cfg, err = ports.LoadConfig(*portConfig)
		if err != nil {
			log.Fatalf("%v", err)
		}
	}
	registry, err := ports.NewRegistry(cfg)
	if err != nil {
		log.Fatalf("Invalid port config: %v", err)
	}

	// Create the switch control client and wait for the switch to dial in
	fClient := manager.NewOpenFlowClient(&manager.OpenFlowParams{
		ListenAddr: *ofListenAddr,
		TableID:    uint8(*ofTableID),
	})
	go func() {
		if err := fClient.Listen(); err != nil {
			log.Fatalf("Switch listener failed: %v", err)
		}
	}()

	// Create the control-VLAN coordinator
	vCoord := vlan.NewCoordinator(registry, &vlan.CoordinatorParams{
		VlanID:      *controlVlan,
		SettleDelay: *settleDelay,
		Dial: vlan.NewBrocadeDialer(&vlan.BrocadeParams{
			Host:           *brHost,
			Port:           *brPort,
			Username:       *brUsername,
			Password:       *brPassword,
			ConnectTimeout: 10 * time.Second,
		}),
	})

	ctlr := controller.NewController(fClient, vCoord, registry)

	// Create the request front end
	var oClient orchestration.Client
	oClient = orchestration.NewRESTClient(ctlr, &orchestration.RESTParams{
		ListenAddr: *apiAddr,
	})
	go func() {
		if err := oClient.Run(stopCh); err != nil {
			log.Fatalf("Slice API failed: %v", err)
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals
	log.Infof("Exiting - signal %v\n", sig)
	close(stopCh)
}
