/*
Package cli provides command-line interface utilities for Ganymede.

It holds the small pieces shared by every ganymede subcommand: typed
command/config errors and signal-aware context setup.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
