// Package log provides structured logging handler construction for use with
// [log/slog].
//
// It supports multiple output formats ([FormatJSON], [FormatLogfmt], and
// [FormatText]) and severity levels ([LevelError], [LevelWarn], [LevelInfo],
// and [LevelDebug]). Use [NewHandler] to create a handler directly, or use
// [Config] with CLI flag integration via [github.com/spf13/pflag] and shell
// completion support via [github.com/spf13/cobra].
//
// Typical usage creates a [Config], registers flags, then builds a handler
// at startup:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	handler, err := cfg.NewHandler(os.Stderr)
//	slog.SetDefault(slog.New(handler))
//
// A [Publisher] fans log output out to multiple subscribers. The CLI
// uses this to copy the driver's per-file "folded" notices into an
// optional JSON-lines audit log file:
//
//	pub := log.NewPublisher()
//	handler := log.NewHandler(pub, log.LevelInfo, log.FormatJSON)
//	logger := slog.New(handler)
//
//	sub := pub.Subscribe()
//	go func() {
//	    for entry := range sub.C() {
//	        auditFile.Write(entry)
//	    }
//	}()
//
// Combine it with [io.MultiWriter] to write to multiple locations directly,
// without a subscriber goroutine:
//
//	pub := log.NewPublisher()
//	w := io.MultiWriter(logFile, pub)
//	handler := log.NewHandler(w, log.LevelInfo, log.FormatJSON)
//	logger := slog.New(handler)
package log
