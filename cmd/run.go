/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adnaan29/AODV-Protocol-Simulator/internal/config"
	"github.com/Adnaan29/AODV-Protocol-Simulator/internal/engine"
	"github.com/Adnaan29/AODV-Protocol-Simulator/internal/pcap"
	"github.com/Adnaan29/AODV-Protocol-Simulator/internal/topology"
)

var (
	configPath string
	outPath    string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation",
	Long: `Runs an AODV simulation scenario: generates the topology, performs the
scripted route discoveries and failures tick by tick, and writes the packet
trace to a pcap-style text file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := buildLogger()
		if err != nil {
			return err
		}

		scn := config.Default()
		if configPath != "" {
			scn, err = config.Load(configPath)
			if err != nil {
				return err
			}
		}

		topo := topology.New(scn.Width, scn.Height, scn.Range)
		eng := engine.New(topo, scn.Seed, logger)
		if err := eng.SetNodeCount(scn.Nodes); err != nil {
			return err
		}
		if err := eng.RegenerateTopology(scn.Seed); err != nil {
			return err
		}
		eng.SetMobilityEnabled(scn.Mobility)

		discoveries := make([]*engine.Discovery, 0, len(scn.Discoveries))
		for _, dc := range scn.Discoveries {
			d, err := eng.StartDiscovery(dc.Source, dc.Destination)
			if err != nil {
				return err
			}
			discoveries = append(discoveries, d)
		}

		failuresAt := make(map[int][]config.Failure)
		lastFailure := 0
		for _, f := range scn.Failures {
			failuresAt[f.AtTick] = append(failuresAt[f.AtTick], f)
			if f.AtTick > lastFailure {
				lastFailure = f.AtTick
			}
		}

		for tick := 1; tick <= scn.MaxTicks; tick++ {
			for _, f := range failuresAt[tick] {
				var ferr error
				if f.Node != nil {
					ferr = eng.SimulateNodeFailure(*f.Node)
				} else {
					ferr = eng.SimulateLinkFailure(f.Link[0], f.Link[1])
				}
				if ferr != nil {
					logger.Warn("failure request rejected", "tick", tick, "err", ferr)
				}
			}
			eng.Tick()
			if !eng.Pending() && tick >= lastFailure {
				break
			}
		}

		for _, d := range discoveries {
			if d.State == engine.StateEstablished {
				logger.Info("discovery result",
					"src", d.Origin, "dst", d.Target, "state", d.State.String(),
					"hops", d.HopCount, "route", d.Route, "needs_rediscovery", d.NeedsRediscovery)
			} else {
				logger.Info("discovery result",
					"src", d.Origin, "dst", d.Target, "state", d.State.String())
			}
		}

		if err := pcap.ExportFile(outPath, eng.EventLog()); err != nil {
			return err
		}

		snap := eng.Snapshot()
		fmt.Printf("simulated %d ticks, %d nodes, %d links, %d events -> %s\n",
			snap.Tick, snap.Nodes, snap.Links, snap.Events, outPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&configPath, "config", "c", "", "Scenario config file (YAML)")
	runCmd.Flags().StringVarP(&outPath, "out", "o", "aodv_trace.pcap.txt", "Trace output path")
}
