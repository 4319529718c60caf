// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/kukanet/kukad/chain"
	"github.com/kukanet/kukad/internal/limits"
	ldr "github.com/kukanet/kukad/internal/log"
	"github.com/kukanet/kukad/internal/version"
	"github.com/kukanet/kukad/miner"
	"github.com/kukanet/kukad/store"
)

// blockDbName is the directory name of the chain database within the data
// directory.
const blockDbName = "chaindata"

var cfg *config

// kukadMain is the real main function for kukad.  It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is
// called.
func kukadMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	tcfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = tcfg

	// Initialize log rotation.  After the log rotation has been
	// initialized, the logger variables may be used.
	ldr.InitLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))
	defer func() {
		if ldr.LogRotator != nil {
			ldr.LogRotator.Close()
		}
	}()

	// Get a channel that will be closed when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C) or from
	// another subsystem.
	interrupt := interruptListener()
	defer kukdLog.Info("Shutdown complete")

	// Show version at startup.
	kukdLog.Infof("Version %s", version.String())

	// Enable http profiling server if requested.
	if cfg.Profile != "" {
		go func() {
			listenAddr := net.JoinHostPort("", cfg.Profile)
			kukdLog.Infof("Profile server listening on %s",
				listenAddr)
			profileRedirect := http.RedirectHandler("/debug/pprof",
				http.StatusSeeOther)
			http.Handle("/", profileRedirect)
			kukdLog.Errorf("%v", http.ListenAndServe(listenAddr, nil))
		}()
	}

	// Write cpu profile if requested.
	if cfg.CPUProfile != "" {
		f, err := os.Create(cfg.CPUProfile)
		if err != nil {
			kukdLog.Errorf("Unable to create cpu profile: %v", err)
			return err
		}
		pprof.StartCPUProfile(f)
		defer f.Close()
		defer pprof.StopCPUProfile()
	}

	// Load the chain database and make sure it holds the genesis block of
	// the active network.
	dbPath := filepath.Join(cfg.DataDir, blockDbName)
	kukdLog.Infof("Loading chain database from '%s'", dbPath)
	db, err := store.Open(dbPath)
	if err != nil {
		kukdLog.Errorf("%v", err)
		return err
	}
	defer func() {
		kukdLog.Infof("Gracefully shutting down the database...")
		db.Close()
	}()
	if err := db.Init(activeNetParams.GenesisBlock); err != nil {
		kukdLog.Errorf("%v", err)
		return err
	}

	if interruptRequested(interrupt) {
		return nil
	}

	c, err := chain.New(&chain.Config{
		Store:       db,
		ChainParams: activeNetParams,
	})
	if err != nil {
		kukdLog.Errorf("%v", err)
		return err
	}
	head, err := c.Head()
	if err != nil {
		kukdLog.Errorf("%v", err)
		return err
	}
	kukdLog.Infof("Chain head %v (height %d, total difficulty %d)",
		head.LastBlock, head.Height, head.TotalDifficulty)

	// Start CPU mining if requested.
	if cfg.Generate {
		cpuMiner := miner.New(&miner.Config{
			ChainParams: activeNetParams,
			Chain:       c,
			Store:       db,
			EasyPow:     cfg.EasyPow,
		})
		cpuMiner.Start()
		defer cpuMiner.Stop()
	}

	// Wait until the interrupt signal is received from an OS signal or
	// shutdown is requested through one of the subsystems.
	<-interrupt
	return nil
}

func main() {
	// Use all processor cores.
	runtime.GOMAXPROCS(runtime.NumCPU())

	// Up some limits.
	if err := limits.SetLimits(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set limits: %v\n", err)
		os.Exit(1)
	}

	// Work around defer not working after os.Exit()
	if err := kukadMain(); err != nil {
		os.Exit(1)
	}
}
