// Package logger provides leveled logging for shroud commands.
//
// The logger supports multiple verbosity levels controlled by command-line
// flags. Messages carry a coloured prefix so they stand apart from the
// spinner and the final command summary.
//
// # Verbosity Levels
//
//   - --verbose: Shows info and warning messages
//   - --debug: Shows all messages including debug details and errors
//
// Without flags, only critical warnings are shown. Command failures are
// reported through the returned error, not the logger.
//
// # Log Methods
//
//	Logger.Infof()           // Shown with --verbose or --debug
//	Logger.Debugf()          // Shown only with --debug
//	Logger.Warnf()           // Shown with --verbose or --debug
//	Logger.WarnfAlways()     // Always shown (critical warnings)
//	Logger.Errorf()          // Shown with --debug
//	Logger.ErrorfAndReturn() // Errorf, then returns the message as an error
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Decrypting %d files", count)
//
// Commands create a logger in the root PersistentPreRunE and pass it to
// workflows through their options.
package logger
