package cmd

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/ircconn/client"
	"github.com/luma/ircconn/internal/env"
	"github.com/luma/ircconn/metrics"
	"github.com/luma/ircconn/storage"
	"github.com/luma/ircconn/transport"
)

var (
	// Servers to try, in order
	addresses []string

	// The port to connect to
	port int

	// The address to serve status and metrics on
	statusAddr string

	// Raw lines written as soon as the connection is up, usually
	// registration
	sendLines []string

	// Queue lines read from stdin
	fromStdin bool
)

func init() {
	flags := ConnectCmd.PersistentFlags()

	flags.StringSliceVarP(&addresses, "address", "a", nil, "Server addresses to try in order (overrides IRC_ADDRESSES)")
	flags.IntVarP(&port, "port", "p", 0, "The port to connect to (overrides IRC_PORT)")
	flags.StringVar(&statusAddr, "status-addr", "", "Serve status and metrics on this address (overrides IRC_STATUS_ADDR)")
	flags.StringArrayVarP(&sendLines, "send", "s", nil, "Raw line to send right after connecting, may be repeated")
	flags.BoolVar(&fromStdin, "stdin", false, "Queue every line read from stdin at medium priority")
}

var ConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to an IRC network and log everything it sends",
	Long: `Connect to an IRC network and log everything it sends

Usage
	ircconn connect -a irc.libera.chat -p 6667 \
		-s "NICK luma" -s "USER luma 0 * :luma" --stdin

`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx, signalStop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer signalStop()

		conf, err := env.LoadConfig(ctx)
		if err != nil {
			return err
		}

		applyFlags(cmd, conf)

		log, err := env.MakeLogger(conf.LogLevel)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		m, err := metrics.New(registry)
		if err != nil {
			return err
		}

		dialer, err := transport.NewDialer(conf.TransportOptions(log.Named("dialer")))
		if err != nil {
			return err
		}

		conn, err := client.New(conf.ClientOptions(dialer, m, log.Named("conn")))
		if err != nil {
			return err
		}

		store := storage.NewInmemoryStore()
		stopRecording := storage.Record(conn, store, log)

		var status *statusServer
		if conf.StatusAddr != "" {
			status, err = startStatusServer(conf.StatusAddr, conf.DebugHTTP, store, registry, log.Named("status"))
			if err != nil {
				return err
			}
		}

		conn.OnReadLine(func(e client.ReadLineEvent) {
			log.Info("<", zap.String("line", e.Line))
		})

		log.Info("Connecting",
			zap.Strings("addresses", conf.Addresses),
			zap.Int("port", conf.Port),
			zap.String("statusAddr", conf.StatusAddr))

		if err := conn.Connect(ctx, conf.Addresses, conf.Port); err != nil {
			return multierr.Combine(err, status.Shutdown(), conn.Close(), store.Close())
		}

		for _, line := range sendLines {
			if err := conn.WriteLine(line, client.Critical); err != nil {
				log.Error("Failed to send", zap.String("line", line), zap.Error(err))
			}
		}

		if fromStdin {
			go queueStdin(ctx, conn, log)
		}

		go listen(ctx, conn)

		// Listen for the interrupt signal.
		<-ctx.Done()

		// Restore default behavior on the interrupt signal and notify user of shutdown.
		signalStop()
		log.Info("Shutting down gracefully, press Ctrl+C again to force")

		stopRecording()

		err = multierr.Combine(
			status.Shutdown(),
			conn.Close(),
			store.Close(),
		)
		if err != nil {
			log.Error("Unclean shutdown", zap.Error(err))
		}

		log.Info("Exiting")
		return nil
	},
}

func applyFlags(cmd *cobra.Command, conf *env.Config) {
	flags := cmd.Flags()

	if flags.Changed("address") {
		conf.Addresses = addresses
	}

	if flags.Changed("port") {
		conf.Port = port
	}

	if flags.Changed("status-addr") {
		conf.StatusAddr = statusAddr
	}
}

// listen keeps reading, across reconnects, until ctx is done.
func listen(ctx context.Context, conn *client.Conn) {
	for ctx.Err() == nil {
		if _, ok := conn.ReadLine(true); ok {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func queueStdin(ctx context.Context, conn *client.Conn, log *zap.Logger) {
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() && ctx.Err() == nil {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if err := conn.Write(line); err != nil {
			log.Warn("Failed to queue line", zap.String("line", line), zap.Error(err))
		}
	}

	if err := scanner.Err(); err != nil {
		log.Warn("Stopped reading stdin", zap.Error(err))
	}
}
