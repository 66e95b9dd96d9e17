// Program packet decodes, checksums and captures network packets
// using the layouts declared in the headers package.
package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"regexp"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/creachadair/command"
	"github.com/creachadair/flax"
	"github.com/creachadair/mds/slice"
	"github.com/danderson/packet"
	"github.com/danderson/packet/internal/hexdump"
	"github.com/danderson/packet/rawsock"
	"github.com/rs/zerolog"
)

var globalArgs struct {
	Config string `flag:"config,Path to a TOML config file"`
}

var decodeArgs struct {
	File  string `flag:"file,Read packet bytes from this file instead of the arguments"`
	Raw   bool   `flag:"raw,The file holds raw bytes rather than hex"`
	Chain bool   `flag:"chain,Decode known payload protocols too"`
}

var sniffArgs struct {
	Count    int    `flag:"count,Stop after this many frames (0 runs until interrupted)"`
	MaxFrame int    `flag:"max-frame,default=65535,Receive buffer size per frame"`
	Backlog  int    `flag:"backlog,default=64,Frames queued before discarding"`
	Types    string `flag:"types,Comma-separated EtherType filter (ipv4 arp vlan ipv6 or hex)"`
	Verbose  bool   `flag:"v,Log capture events to stderr"`
}

func main() {
	root := &command.C{
		Name:     "packet",
		Usage:    "command args...",
		SetFlags: command.Flags(flax.MustBind, &globalArgs),
		Commands: []*command.C{
			{
				Name:  "decode",
				Usage: "decode schema [hex...]",
				Help: `Decode packet bytes against a header schema.

The bytes come from the arguments as hex, from a file with --file, or
raw from stdin. Whitespace, colons and dots in hex input are ignored.

Known schemas: ` + strings.Join(schemaNames(), ", ") + `.

With --chain, known payload protocols are decoded too: Ethernet
frames continue into ARP or IPv4, IPv4 packets into ICMP, UDP, TCP or
GRE, and so on. Bytes with no known schema are hex dumped.`,
				SetFlags: command.Flags(flax.MustBind, &decodeArgs),
				Run:      runDecode,
			},
			{
				Name:  "checksum",
				Usage: "checksum [hex...]",
				Help: `Compute the RFC 1071 checksum of the given bytes.

The bytes come from the arguments as hex, or raw from stdin.`,
				Run: runChecksum,
			},
			{
				Name:  "dump",
				Usage: "dump [hex...]",
				Help:  "Hex dump the given bytes.",
				Run:   runDump,
			},
			{
				Name:  "schemas",
				Usage: "schemas [regexp]",
				Help:  "List the header schemas the decode command knows.",
				Run:   runSchemas,
			},
			{
				Name:  "sniff",
				Usage: "sniff [interface]",
				Help: `Capture frames from a network interface and decode them.

Needs CAP_NET_RAW, and an interface name here or in the config file.
Stop with an interrupt, a per-type tally prints on the way out.`,
				SetFlags: command.Flags(flax.MustBind, &sniffArgs),
				Run:      runSniff,
			},
			command.HelpCommand(nil),
			command.VersionCommand(),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	env := root.NewEnv(nil).SetContext(ctx)
	command.RunOrFail(env, os.Args[1:])
}

func schemaNames() []string {
	return slices.Sorted(maps.Keys(schemas))
}

func runDecode(env *command.Env) error {
	if len(env.Args) == 0 {
		return env.Usagef("decode requires a schema name")
	}
	if _, err := loadConfig(); err != nil {
		return err
	}

	var (
		bs  []byte
		err error
	)
	if decodeArgs.File != "" {
		contents, rerr := os.ReadFile(decodeArgs.File)
		if rerr != nil {
			return rerr
		}
		if decodeArgs.Raw {
			bs = contents
		} else {
			bs, err = parseHex(string(contents))
		}
	} else {
		bs, err = readBytes(env.Args[1:])
	}
	if err != nil {
		return err
	}

	return printLayers(env.Args[0], bs, decodeArgs.Chain)
}

func runChecksum(env *command.Env) error {
	bs, err := readBytes(env.Args)
	if err != nil {
		return err
	}
	fmt.Printf("%#04x\n", packet.Sum(bs))
	return nil
}

func runDump(env *command.Env) error {
	bs, err := readBytes(env.Args)
	if err != nil {
		return err
	}
	fmt.Print(hexdump.Dump(bs))
	return nil
}

func runSchemas(env *command.Env) error {
	filter := ""
	if len(env.Args) > 0 {
		filter = env.Args[0]
	}
	f, err := regexp.Compile(filter)
	if err != nil {
		return err
	}
	names := slices.Collect(slice.Select(schemaNames(), f.MatchString))
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

func runSniff(env *command.Env) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ifname := cfg.Interface
	if len(env.Args) > 0 {
		ifname = env.Args[0]
	}
	if ifname == "" {
		return env.Usagef("sniff needs an interface, as an argument or in the config file")
	}
	want, err := parseTypes(sniffArgs.Types)
	if err != nil {
		return err
	}

	log := zerolog.Nop()
	if sniffArgs.Verbose {
		log = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Str("iface", ifname).Logger()
	}

	conn, err := rawsock.Dial(ifname)
	if err != nil {
		return fmt.Errorf("opening %s: %w", ifname, err)
	}
	c := rawsock.NewCapture(conn, rawsock.CaptureConfig{
		MaxFrame: sniffArgs.MaxFrame,
		Backlog:  sniffArgs.Backlog,
		Log:      &log,
	})
	defer c.Close()

	counts := map[string]int{}
	seen := 0
	for {
		select {
		case <-env.Context().Done():
			printTally(counts)
			return nil
		case f, ok := <-c.Chan():
			if !ok {
				printTally(counts)
				return c.Err()
			}
			et := frameType(f.Data)
			if len(want) > 0 && !want.Has(et) {
				continue
			}
			seen++
			counts[et.String()]++
			fmt.Printf("-- frame %d, %d bytes\n", seen, len(f.Data))
			if err := printLayers("ethernet", f.Data, true); err != nil {
				fmt.Printf("undecodable: %v\n%s", err, hexdump.Dump(f.Data))
			}
			if f.Overflow {
				fmt.Println("OVERFLOW, some frames lost")
			}
			if sniffArgs.Count > 0 && seen >= sniffArgs.Count {
				printTally(counts)
				return nil
			}
		}
	}
}
