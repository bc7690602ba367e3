package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/pytestmap/internal/session"
	"github.com/lu-zhengda/pytestmap/internal/tui"
)

var (
	messageLoad loadFlags
	messageOut  outputFlags
)

var messageCmd = &cobra.Command{
	Use:   "message [file|-]",
	Short: "Show an {opts, data} message",
	Long: "Message reads one envelope holding view options and data. Data is either a list of\n" +
		"flat records, which are grouped by --dims, or an already grouped {key, values} tree.\n" +
		"Without --output the interactive viewer opens.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readMessage(cmd, args)
		if err != nil {
			return err
		}
		msg, err := session.DecodeMessage(data)
		if err != nil {
			return err
		}

		sess := newSession(messageLoad)
		sess.Apply(msg)

		o := messageOut
		if jsonFlag && o.output == "" {
			o.output = "json"
		}
		if o.output == "" {
			return tui.Run(tui.New(sess, nil, logger), nil)
		}
		if !validOutput(o.output) {
			return fmt.Errorf("unsupported output %q", o.output)
		}
		return emit(cmd.OutOrStdout(), sess, o)
	},
}

func readMessage(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == stdinArg {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read message: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	return data, nil
}

func init() {
	messageCmd.Flags().StringVar(&messageLoad.dims, "dims", "", "Comma-separated grouping selectors for record data")
	addOutputFlags(messageCmd, &messageOut, "")
}
