/*
Package log provides structured logging for AssetGraph built on zerolog.

A single global logger is initialized once at process start and shared by
every component. Child loggers carry contextual fields:

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})

	apiLog := log.WithComponent("api")
	apiLog.Info().Int("port", 4001).Msg("GraphQL endpoint listening")

	sigLog := log.WithSignalID("sig-1")
	sigLog.Debug().Float64("value", 45.2).Msg("reading generated")

Console output (the default) is for interactive use; JSON output is for
production log shipping.
*/
package log
