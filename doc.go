// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
kukad is the node daemon for a Cuckoo Cycle proof of work block chain.

It maintains the canonical chain in a local database, validates candidate
blocks through a staged acceptance pipeline, and can optionally mine blocks
with the built-in CPU miner on networks whose graph size the reference solver
supports.

Usage:

	kukad [OPTIONS]

Application Options:

	-V, --version     Display version information and exit
	-C, --configfile= Path to configuration file
	-b, --datadir=    Directory to store data
	    --logdir=     Directory to log output
	    --simnet      Use the simulation test network
	    --generate    Generate (mine) blocks using the CPU
	    --easypow     Verify proof of work against the relaxed graph size --
	                  NOTE: simnet only, for testing
	    --profile=    Enable HTTP profiling on given port -- NOTE port must
	                  be between 1024 and 65536
	    --cpuprofile= Write CPU profile to the specified file
	-d, --debuglevel= Logging level for all subsystems {trace, debug, info,
	                  warn, error, critical} -- You may also specify
	                  <subsystem>=<level>,<subsystem2>=<level>,... to set
	                  the log level for individual subsystems -- Use show to
	                  list available subsystems

Help Options:

	-h, --help        Show this help message
*/
package main
