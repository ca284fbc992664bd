// Command sk is a terminal client for the stockkeeper inventory service.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/stockkeeper/internal/api"
	"github.com/and161185/stockkeeper/internal/client"
	"github.com/and161185/stockkeeper/internal/logger"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const callTimeout = 30 * time.Second

func usage() {
	fmt.Fprintf(os.Stderr, `sk CLI
Usage:
  sk -addr HOST:PORT [-cacert file | -insecure | -plaintext] [-v] <cmd> [args]

Commands:
  version
  signup    -email <email> -password <password>
  signin    -email <email> -password <password>   (saves token)
  signout
  whoami
  list      [-q text] [-category name]
  get       -id <uuid>
  add       -name <name> [-qty n] [-category name] [-image file]
  edit      -id <uuid> [-name name] [-qty n] [-category name]
  attach    -id <uuid> -image <file>
  image     -id <uuid> -o <file>                    (download the photo)
  inc|dec   -id <uuid>
  adjust    -id <uuid> -delta <n>
  rm        -id <uuid>
  stats
  low
  settings  [dark on|off | low <n> | step <+n|-n>]
  watch     [-q text] [-category name]             (live dashboard, Ctrl-C to stop)
`)
	os.Exit(2)
}

// app carries what every command needs.
type app struct {
	c   *client.Client
	out io.Writer
	log *zap.Logger
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"signup":   cmdSignUp,
	"signin":   cmdSignIn,
	"signout":  cmdSignOut,
	"whoami":   cmdWhoAmI,
	"list":     cmdList,
	"get":      cmdGet,
	"add":      cmdAdd,
	"edit":     cmdEdit,
	"attach":   cmdAttach,
	"image":    cmdImage,
	"inc":      cmdInc,
	"dec":      cmdDec,
	"adjust":   cmdAdjust,
	"rm":       cmdRemove,
	"stats":    cmdStats,
	"low":      cmdLow,
	"settings": cmdSettings,
	"watch":    cmdWatch,
}

// main dispatches subcommands and configures TLS for RPC calls.
func main() {
	addr := flag.String("addr", "localhost:8443", "server addr")
	caPath := flag.String("cacert", "", "CA cert (PEM)")
	insecure := flag.Bool("insecure", false, "skip cert verify (dev)")
	plaintext := flag.Bool("plaintext", false, "no TLS (dev)")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	name := flag.Arg(0)
	if name == "version" {
		fmt.Printf("sk %s (%s)\n", version, buildDate)
		return
	}
	cmd, ok := commands[name]
	if !ok {
		usage()
	}

	log := logger.NewConsole(*verbose)
	defer func() { _ = log.Sync() }()

	cc, err := client.Dial(client.DialOptions{
		Addr:      *addr,
		CACert:    *caPath,
		Insecure:  *insecure,
		Plaintext: *plaintext,
	})
	if err != nil {
		fail(err)
	}
	defer cc.Close()

	a := &app{
		c:   client.New(api.NewInventoryClient(cc), client.NewSession(""), !*plaintext, log),
		out: os.Stdout,
		log: log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if name != "watch" {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, callTimeout)
		defer cancel()
	}

	if err := cmd(ctx, a, flag.Args()[1:]); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, client.Message(err))
	os.Exit(1)
}
