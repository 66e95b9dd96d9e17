package main

import (
	"cmp"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/creachadair/mds/heapq"
	"github.com/creachadair/mds/mapset"
	"github.com/danderson/packet"
	"github.com/danderson/packet/headers"
	"github.com/danderson/packet/internal/hexdump"
	"github.com/kr/pretty"
)

// schemas maps schema names to decoders for the headers package
// types.
var schemas = map[string]func(bs []byte) (any, error){
	"ethernet": decodeAs[headers.Ethernet],
	"arp":      decodeAs[headers.ARP],
	"ipv4":     decodeAs[headers.IPv4],
	"icmp":     decodeAs[headers.ICMPEcho],
	"udp":      decodeAs[headers.UDP],
	"tcp":      decodeAs[headers.TCP],
	"gre":      decodeAs[headers.GRE],
	"dns":      decodeAs[headers.DNS],
}

func decodeAs[T any](bs []byte) (any, error) {
	var v T
	if err := packet.Unmarshal(bs, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// headerLen returns how many wire bytes the decoded header v covers.
func headerLen(v any) (int, error) {
	bs, err := packet.Marshal(v)
	if err != nil {
		return 0, err
	}
	return len(bs), nil
}

// nextLayer names the schema of v's payload, or "" if it isn't one
// this tool decodes.
func nextLayer(v any) string {
	switch h := v.(type) {
	case headers.Ethernet:
		switch h.Type {
		case headers.TypeARP:
			return "arp"
		case headers.TypeIPv4:
			return "ipv4"
		}
	case headers.IPv4:
		switch h.Protocol {
		case headers.ProtoICMP:
			return "icmp"
		case headers.ProtoUDP:
			return "udp"
		case headers.ProtoTCP:
			return "tcp"
		case headers.ProtoGRE:
			return "gre"
		}
	case headers.GRE:
		if h.Protocol == headers.TypeIPv4 {
			return "ipv4"
		}
	case headers.UDP:
		if h.SrcPort == 53 || h.DstPort == 53 {
			return "dns"
		}
	}
	return ""
}

// printLayers decodes bs against the named schema, following known
// payload protocols when follow is set, and hex dumps whatever is
// left over.
func printLayers(name string, bs []byte, follow bool) error {
	first := true
	for name != "" && len(bs) > 0 {
		decode := schemas[name]
		if decode == nil {
			return fmt.Errorf("unknown schema %q, see the schemas command", name)
		}
		v, err := decode(bs)
		if err != nil {
			if first {
				return fmt.Errorf("decoding %s: %w", name, err)
			}
			fmt.Printf("%s: undecodable: %v\n", name, err)
			break
		}
		fmt.Printf("%s: %# v\n", name, pretty.Formatter(v))
		n, err := headerLen(v)
		if err != nil {
			return err
		}
		bs = bs[n:]
		if !follow {
			break
		}
		name = nextLayer(v)
		first = false
	}
	if len(bs) > 0 {
		fmt.Printf("payload (%d bytes):\n%s", len(bs), hexdump.Dump(bs))
	}
	return nil
}

// frameType peeks at the EtherType of an Ethernet frame.
func frameType(bs []byte) headers.EtherType {
	var eth headers.Ethernet
	if err := packet.Unmarshal(bs, &eth); err != nil {
		return 0
	}
	return eth.Type
}

// parseTypes parses the sniff EtherType filter. An empty filter
// returns a nil set, meaning all types.
func parseTypes(s string) (mapset.Set[headers.EtherType], error) {
	if s == "" {
		return nil, nil
	}
	want := mapset.New[headers.EtherType]()
	for _, tok := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(tok)) {
		case "ipv4":
			want.Add(headers.TypeIPv4)
		case "arp":
			want.Add(headers.TypeARP)
		case "vlan":
			want.Add(headers.TypeVLAN)
		case "ipv6":
			want.Add(headers.TypeIPv6)
		default:
			n, err := strconv.ParseUint(strings.TrimSpace(tok), 0, 16)
			if err != nil {
				return nil, fmt.Errorf("unknown ethertype %q", tok)
			}
			want.Add(headers.EtherType(n))
		}
	}
	return want, nil
}

// printTally prints per-EtherType frame counts, busiest first.
func printTally(counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	type tally struct {
		name string
		n    int
	}
	q := heapq.New(func(a, b tally) int {
		if d := cmp.Compare(b.n, a.n); d != 0 {
			return d
		}
		return cmp.Compare(a.name, b.name)
	})
	for name, n := range counts {
		q.Add(tally{name, n})
	}
	fmt.Println("\nframes by type:")
	for !q.IsEmpty() {
		t, _ := q.Pop()
		fmt.Printf("  %6d %s\n", t.n, t.name)
	}
}

// readBytes returns the packet bytes given as hex arguments, or raw
// from stdin when there are no arguments.
func readBytes(args []string) ([]byte, error) {
	if len(args) == 0 {
		return io.ReadAll(os.Stdin)
	}
	return parseHex(strings.Join(args, ""))
}

// parseHex decodes hex that may carry the separators captures travel
// with: whitespace, colons, dots and an 0x prefix.
func parseHex(s string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':', '.':
			return -1
		}
		return r
	}, s)
	clean = strings.TrimPrefix(clean, "0x")
	bs, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("bad hex input: %w", err)
	}
	return bs, nil
}

// fileConfig is the optional TOML config file.
type fileConfig struct {
	MaxBufferSize   int    `toml:"max_buffer_size"`
	MaxNestingDepth int    `toml:"max_nesting_depth"`
	Interface       string `toml:"interface"`
}

// loadConfig applies the config file named by --config, if any, and
// returns it.
func loadConfig() (fileConfig, error) {
	var cfg fileConfig
	if globalArgs.Config == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(globalArgs.Config, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("loading config %s: %w", globalArgs.Config, err)
	}
	if meta.IsDefined("max_buffer_size") || meta.IsDefined("max_nesting_depth") {
		l := packet.CurrentLimits()
		if meta.IsDefined("max_buffer_size") {
			l.MaxBufferSize = cfg.MaxBufferSize
		}
		if meta.IsDefined("max_nesting_depth") {
			l.MaxNestingDepth = cfg.MaxNestingDepth
		}
		if err := packet.SetLimits(l); err != nil {
			return cfg, fmt.Errorf("config %s: %w", globalArgs.Config, err)
		}
	}
	return cfg, nil
}
