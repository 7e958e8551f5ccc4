// aura-ctl pokes a running assistant over its unix control socket.
// Typical use is binding `aura-ctl trigger` to a hotkey for push-to-talk.
package main

import (
	"fmt"
	"os"

	cli "github.com/spf13/pflag"

	"aura/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "s", "/tmp/aura.sock", "Control socket path")
	cli.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <trigger|stop>\n", os.Args[0])
		cli.PrintDefaults()
	}
	cli.Parse()

	args := cli.Args()
	if len(args) != 1 {
		cli.Usage()
		os.Exit(2)
	}

	cmd := args[0]
	switch cmd {
	case ipc.CmdTrigger, ipc.CmdStop:
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		cli.Usage()
		os.Exit(2)
	}

	if err := ipc.SendCommand(*socket, cmd); err != nil {
		fmt.Fprintf(os.Stderr, "failed to reach assistant at %s: %v\n", *socket, err)
		os.Exit(1)
	}
}
