// Package cli provides helpers shared by the itemsvc commands: output
// formatting, error types with exit codes, and signal handling.
//
//	ctx, stop := cli.SignalContext(context.Background())
//	defer stop()
//
//	if err := run(ctx); err != nil {
//	    fmt.Fprintln(os.Stderr, err)
//	    os.Exit(cli.ExitCode(err))
//	}
package cli
