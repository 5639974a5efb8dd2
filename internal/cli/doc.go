// Package cli turns the bootgraph command line into an app.Config. Flag
// defaults for logging can come from the environment or a .env file;
// usage and flag errors surface as an ExitError carrying the exit code.
package cli
