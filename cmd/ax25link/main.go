/*------------------------------------------------------------------
 *
 * Purpose:	Command-line harness for the ax25 link-layer engine: reads
 *		a raw byte stream from stdin, runs it through the BitStream
 *		Extractor and Engine, and writes delivered payloads to
 *		stdout; reads payload lines from stdin in send mode and
 *		writes framed bytes to stdout instead.
 *
 *		Not the radio flowgraph itself — that's named out of scope
 *		in spec.md §1 — just enough CLI glue to exercise the engine
 *		end to end.
 *
 *---------------------------------------------------------------*/
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/JBBirk/ax25link/ax25"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "YAML link configuration file.")
		send       = pflag.BoolP("send", "s", false, "Read payload lines from stdin and write framed bytes to stdout, instead of decoding.")
		version    = pflag.Bool("version", false, "Print version and exit.")
		help       = pflag.Bool("help", false, "Display help text.")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - AX.25 data-link engine harness\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}
	if *version {
		printVersion()
		os.Exit(0)
	}

	cfg := ax25.DefaultConfig()
	if *configPath != "" {
		loaded, err := ax25.LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading config: %s\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := ax25.NewLogger(os.Stderr, "ax25link")

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	engine := ax25.NewEngine(ax25.Options{
		Config: cfg,
		Logger: logger,
		FrameOut: func(frame []byte) {
			out.Write(frame)
			out.Flush()
		},
		PayloadOut: func(payload []byte) {
			fmt.Fprintf(out, "%s\n", payload)
			out.Flush()
		},
		OnFatal: func(err error) {
			logger.Error("link failed", "err", err)
			os.Exit(1)
		},
	})
	defer engine.Close()

	if *send {
		runSend(engine, os.Stdin)
		return
	}
	runDecode(engine, os.Stdin)
}

// runSend treats each stdin line as one payload to submit upward.
func runSend(engine *ax25.Engine, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		engine.SubmitPayload(append([]byte(nil), scanner.Bytes()...))
	}
}

// runDecode feeds raw stdin bytes through the engine's own BitStream
// Extractor; delivered payloads are written via PayloadOut.
func runDecode(engine *ax25.Engine, r io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			engine.SubmitRawBytes(buf[:n])
		}
		if err != nil {
			return
		}
	}
}
