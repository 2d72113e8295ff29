package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/architector1324/vnix/pkg/config"
	"github.com/architector1324/vnix/pkg/drv"
	"github.com/architector1324/vnix/pkg/kern"
	"github.com/architector1324/vnix/pkg/log"
	"github.com/architector1324/vnix/pkg/metrics"
	"github.com/architector1324/vnix/pkg/store"
	"github.com/architector1324/vnix/pkg/term"
	"github.com/architector1324/vnix/pkg/vnix"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Boot the kernel and run the scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")

		cfg := config.Default()
		if cfgPath != "" {
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}

		if cfg.LogLevel != "" {
			log.Init(log.Config{
				Level:      log.Level(cfg.LogLevel),
				JSONOutput: cfg.LogJSON,
			})
		}

		var st store.Store = store.NewRAMStore()
		if cfg.StorePath != "" {
			bolt, err := store.NewBoltStore(cfg.StorePath)
			if err != nil {
				return err
			}
			defer bolt.Close()
			st = bolt
		}

		d := kern.KernDrv{
			CLI:  drv.NewHostCLI(),
			Disp: drv.StubDisp{},
			Time: drv.NewHostTime(),
			Rnd:  drv.HostRnd{},
			Mem:  drv.HostMem{},
		}
		if cfg.Stub {
			d.Rnd = &drv.PRng{}
			d.Time = drv.StubTime{}
			d.Mem = drv.StubMem{TotalBytes: 1 << 30, FreeBytes: 1 << 29}
		}

		if cfg.MetricsAddr != "" {
			if err := metrics.Register(); err != nil {
				return fmt.Errorf("failed to register metrics: %w", err)
			}
			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
					log.Errorf("metrics listener failed", err)
				}
			}()
		}

		k := kern.New(d, term.New(), st)
		defer k.Events.Stop()

		log.Info("vnix kernel running")
		return vnix.Entry(k, cfg.Init.Msg, cfg.Init.Serv)
	},
}

func init() {
	runCmd.Flags().String("config", "", "Path to the boot manifest (YAML)")
}
