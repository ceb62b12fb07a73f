/*
Package cli provides helpers shared by the hello command: output formatters
and typed errors that map to exit codes.

Output Formatting:

Command results can be printed as an aligned table, JSON or CSV. Values
implementing Tabular render as rows in the text and CSV formats; JSON
encodes the value itself.

	format, err := cli.ParseFormat(flagValue)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), rows)

Errors:

	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("", err)
	}
	os.Exit(cli.ExitCode(err))
*/
package cli
