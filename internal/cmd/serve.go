package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LuPow132/Volumetric-Interactive-Display-2025/frameslot"
	"github.com/LuPow132/Volumetric-Interactive-Display-2025/ingest"
	"github.com/LuPow132/Volumetric-Interactive-Display-2025/internal/config"
	"github.com/LuPow132/Volumetric-Interactive-Display-2025/rasterizer"
	"github.com/LuPow132/Volumetric-Interactive-Display-2025/sharedframe"
)

var (
	serveListenFlag         string
	serveShmNameFlag        string
	serveStatusIntervalFlag int
)

func addServeCommand(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ingest server and rasterizer until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	flags := cmd.Flags()
	flags.StringVar(&serveListenFlag, "listen", "", "TCP listen address (overrides config, default "+ingest.DefaultAddr+")")
	flags.StringVar(&serveShmNameFlag, "shm-name", "", "shared-memory region name (overrides config)")
	flags.IntVar(&serveStatusIntervalFlag, "status-interval", 0, "frames between status log lines (overrides config)")

	parent.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logrus.New()

	cfg, err := config.Load(configPathFlag)
	if err != nil {
		return err
	}
	if serveListenFlag != "" {
		cfg.Listen = serveListenFlag
	}
	if serveShmNameFlag != "" {
		cfg.SharedMemName = serveShmNameFlag
	}
	if serveStatusIntervalFlag != 0 {
		cfg.StatusInterval = serveStatusIntervalFlag
	}

	sf, err := sharedframe.Open(cfg.SharedMemName)
	if err != nil {
		log.WithError(err).Error("failed to open shared voxel frame")
		return fmt.Errorf("startup: %w", err)
	}
	defer sf.Close()

	slot := frameslot.New()

	rz := rasterizer.New(slot, sf, log)
	rz.StatusInterval = cfg.StatusInterval
	rasterDone := make(chan struct{})
	go func() {
		rz.Run()
		close(rasterDone)
	}()

	srv := ingest.NewServer(slot, log)
	srv.Addr = cfg.Listen

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := srv.Serve(ctx)

	// Shutdown sequence: listener and connection handlers are already down
	// (Serve only returns after draining them); now close the slot so the
	// rasterizer wakes from its blocking Take and exits, then join it
	// before unmapping the shared region (deferred sf.Close above).
	slot.Close()
	<-rasterDone

	return serveErr
}
