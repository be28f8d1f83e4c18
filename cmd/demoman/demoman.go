/*

A simple CLI app to parse and display information about a Source-engine
demo recording passed as a CLI argument.

*/
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/icza/gox/gox"

	"github.com/coderbot16/demoman/dem"
	"github.com/coderbot16/demoman/dem/demmsg"
	"github.com/coderbot16/demoman/demparser"
)

const (
	appName    = "demoman"
	appVersion = "v1.0.0"
	appHome    = "https://github.com/coderbot16/demoman"
)

const (
	ExitCodeMissingArguments    = 1
	ExitCodeFailedToParseDemo   = 2
	ExitCodeFailedToCreateFile  = 3
)

// Flag variables
var (
	version = flag.Bool("version", false, "print version info and exit")

	header       = flag.Bool("header", true, "print the demo header")
	frames       = flag.Bool("frames", false, "print the frame list")
	messages     = flag.Bool("messages", false, "print decoded messages; valid with 'frames'")
	stringTables = flag.Bool("stringtables", false, "print the final string tables")
	gameEvents   = flag.Bool("gameevents", true, "print decoded game events")
	userCmds     = flag.Bool("usercmds", false, "print decoded user commands")
	dataTables   = flag.Bool("datatables", false, "print the send-table schema")
	outFile      = flag.String("outfile", "", "optional output file name")

	indent = flag.Bool("indent", true, "use indentation when formatting output")
)

func main() {
	flag.Parse()

	if *version {
		printVersion()
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(ExitCodeMissingArguments)
	}

	cfg := demparser.Config{
		Messages:     *frames && *messages || *stringTables || *gameEvents,
		StringTables: *stringTables,
		GameEvents:   *gameEvents,
	}

	d, err := demparser.ParseFileConfig(args[0], cfg)
	if err != nil {
		fmt.Printf("Failed to parse demo: %v\n", err)
		os.Exit(ExitCodeFailedToParseDemo)
	}

	var destination = os.Stdout

	if *outFile != "" {
		foutput, err := os.Create(*outFile)
		if err != nil {
			fmt.Printf("Failed to create output file: %v\n", err)
			os.Exit(ExitCodeFailedToCreateFile)
		}
		defer func() {
			if err := foutput.Close(); err != nil {
				panic(err)
			}
		}()

		destination = foutput
	}

	// custom holds any derived data we want in the output and is not part
	// of dem.Demo.
	custom := map[string]interface{}{
		"SignonEnd": dem.HeaderLength + int(d.Header.SignonLength),
		"Summary":   summarize(d),
	}

	if *userCmds {
		custom["UserCmds"] = decodeUserCmds(d)
	}
	if *dataTables {
		custom["DataTables"] = decodeDataTables(d)
	}

	// Zero values in the demo the user does not wish to see:
	if !*header {
		d.Header = nil
	}
	if !*stringTables {
		d.StringTables = nil
	}
	if !*gameEvents {
		d.GameEvents = nil
		d.EventList = nil
	}
	if *frames {
		if !*messages {
			for i := range d.Frames {
				if update, ok := d.Frames[i].Payload.(*dem.UpdateFrame); ok {
					update.Messages = nil
				}
			}
		}
	} else {
		d.Frames = nil
	}

	enc := json.NewEncoder(destination)

	if *indent {
		enc.SetIndent("", "  ")
	}

	valueToEncode := struct {
		*dem.Demo
		Custom map[string]interface{}
	}{d, custom}

	if err := enc.Encode(valueToEncode); err != nil {
		fmt.Printf("Failed to encode output: %v\n", err)
	}
}

// summary holds counts derived from the frame and message streams.
type summary struct {
	Frames        int
	Updates       int
	Messages      int
	NopDesyncs    int
	ConsoleCmds   int
	GameEvents    int
	DecodeErrors  int
	Server        string
	Map           string
	PlaybackState string
}

func summarize(d *dem.Demo) summary {
	s := summary{
		Frames:       len(d.Frames),
		GameEvents:   len(d.GameEvents),
		DecodeErrors: len(d.DecodeErrors),
		Server:       d.Header.ServerName,
		Map:          d.Header.MapName,
	}

	stopped := false

	for _, frame := range d.Frames {
		switch payload := frame.Payload.(type) {
		case *dem.UpdateFrame:
			s.Updates++
			s.Messages += len(payload.Messages)

			// A Nop in the middle of an update usually means a
			// mis-parsed message stream; surface it.
			for i, msg := range payload.Messages {
				if _, ok := msg.(demmsg.Nop); ok && i < len(payload.Messages)-1 {
					s.NopDesyncs++
				}
			}
		case dem.ConsoleCommandFrame:
			s.ConsoleCmds++
		case dem.StopFrame:
			stopped = true
		}
	}

	s.PlaybackState = gox.If(stopped).String("complete", "truncated")

	return s
}

// decodedUserCmd pairs a decoded user command with its frame tick.
type decodedUserCmd struct {
	Tick     uint32
	Sequence uint32
	Delta    *dem.UserCmdDelta
	Error    string `json:",omitempty"`
}

func decodeUserCmds(d *dem.Demo) []decodedUserCmd {
	var cmds []decodedUserCmd

	for _, frame := range d.Frames {
		payload, ok := frame.Payload.(dem.UserCmdFrame)
		if !ok {
			continue
		}

		cmd := decodedUserCmd{Tick: frame.Tick, Sequence: payload.Sequence}

		delta, err := demparser.ParseUserCmd(payload.Data)
		if err != nil {
			cmd.Error = err.Error()
		} else {
			cmd.Delta = delta
		}

		cmds = append(cmds, cmd)
	}

	return cmds
}

func decodeDataTables(d *dem.Demo) *dem.DataTables {
	for _, frame := range d.Frames {
		payload, ok := frame.Payload.(dem.DataTablesFrame)
		if !ok {
			continue
		}

		tables, err := demparser.ParseDataTables(payload.Data)
		if err != nil {
			fmt.Printf("Failed to parse data tables: %v\n", err)
			return nil
		}

		return tables
	}

	return nil
}

func printVersion() {
	fmt.Println(appName, "version:", appVersion)
	fmt.Println("Parser version:", demparser.Version)
	fmt.Println("Platform:", runtime.GOOS, runtime.GOARCH)
	fmt.Println("Built with:", runtime.Version())
	fmt.Println("Home page:", appHome)
}

func printUsage() {
	fmt.Println("Usage:")
	name := os.Args[0]
	fmt.Printf("\t%s [FLAGS] demofile.dem\n", name)
	fmt.Println("\tRun with '-h' to see a list of available flags.")
}
