package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// EmbeddedServerConfig holds options for the in-binary NATS server.
type EmbeddedServerConfig struct {
	// InProcess skips the listen socket; the client connects through memory
	// and nothing is reachable from outside the process.
	InProcess bool

	// EnableLogging routes server logs through slog.
	EnableLogging bool

	JetStream       bool
	JetStreamDomain string

	// StoreDir is the JetStream file-storage directory.
	StoreDir string

	// LeafNodeURL connects this server as a leaf to an upstream cluster,
	// which lets a remote runtool reach a laptop instance. Empty runs
	// standalone. LeafNodeCreds optionally authenticates the hop.
	LeafNodeURL   string
	LeafNodeCreds string
}

const serverStartTimeout = 5 * time.Second

// RunEmbeddedServer boots the embedded NATS server and connects a client to
// it. The caller owns shutdown: nc.Close, then ns.Shutdown.
func RunEmbeddedServer(cfg EmbeddedServerConfig) (*nats.Conn, *server.Server, error) {
	opts, err := cfg.serverOptions()
	if err != nil {
		return nil, nil, err
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, nil, err
	}
	if cfg.EnableLogging {
		ns.SetLogger(NewNATSServerLogger(slog.Default()), false, false)
	}

	go ns.Start()
	if !ns.ReadyForConnections(serverStartTimeout) {
		ns.Shutdown()
		return nil, nil, errors.New("embedded NATS server not ready in time")
	}

	var clientOpts []nats.Option
	if cfg.InProcess {
		clientOpts = append(clientOpts, nats.InProcessServer(ns))
	}
	nc, err := nats.Connect(ns.ClientURL(), clientOpts...)
	if err != nil {
		ns.Shutdown()
		return nil, nil, err
	}
	return nc, ns, nil
}

func (cfg EmbeddedServerConfig) serverOptions() (*server.Options, error) {
	opts := &server.Options{
		ServerName:      "hellorun",
		DontListen:      cfg.InProcess,
		JetStream:       cfg.JetStream,
		JetStreamDomain: cfg.JetStreamDomain,
		StoreDir:        cfg.StoreDir,
	}
	if cfg.LeafNodeURL != "" {
		leafURL, err := url.Parse(cfg.LeafNodeURL)
		if err != nil {
			return nil, fmt.Errorf("leaf node url: %w", err)
		}
		opts.LeafNode = server.LeafNodeOpts{Remotes: []*server.RemoteLeafOpts{{
			URLs:        []*url.URL{leafURL},
			Credentials: cfg.LeafNodeCreds,
		}}}
	}
	return opts, nil
}
