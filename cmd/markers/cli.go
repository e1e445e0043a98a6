package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pamana/markers/internal/dispatcher"
	"github.com/pamana/markers/internal/session"
)

const promptHelp = `Commands:
  filter [visited=any|yes|no] [bookmarked=any|yes|no] [region=NAME]
         [distance=KM] [today=true|false]
         (omitted keys reset to their defaults; use _ for spaces in NAME)
  search TEXT        narrow the list; empty TEXT clears the search
  status ID CODE     set a marker's flags (vb, vx, xb or xx)
  locate             request a GPS fix (MARKERS_LAT / MARKERS_LON)
  show ID            center the map on a marker
  back               return from the detail view
  help               this text
  quit               exit`

// runPrompt reads commands from the terminal and feeds them through the
// dispatcher, which posts them onto the session loop.
func runPrompt(in io.Reader, out io.Writer, d *dispatcher.Dispatcher, loop *session.Loop, logger zerolog.Logger) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		command, args := fields[0], fields[1:]

		switch command {
		case "help":
			fmt.Fprintln(out, promptHelp)
			continue
		case "quit", "exit":
			loop.Stop()
			return
		}

		event, err := buildEvent(command, args, line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}

		if _, err := d.Dispatch(event); err != nil {
			logger.Error().Err(err).Str("command", event.Command).Msg("Command rejected")
			fmt.Fprintln(out, "error:", err)
		}
	}

	// stdin closed; end the session
	loop.Stop()
}

func buildEvent(command string, args []string, line string) (dispatcher.Event, error) {
	event := dispatcher.Event{Timestamp: time.Now()}

	switch command {
	case "filter":
		filterArgs, err := buildFilterArgs(args)
		if err != nil {
			return event, err
		}
		event.Command = session.CmdFilterSet
		event.Args = filterArgs

	case "search":
		event.Command = session.CmdSearch
		// keep the query verbatim, spaces included
		event.Args = []string{strings.TrimSpace(strings.TrimPrefix(line, "search"))}

	case "status":
		if len(args) != 2 {
			return event, fmt.Errorf("usage: status ID CODE")
		}
		event.Command = session.CmdStatusSet
		event.Args = args

	case "locate":
		event.Command = session.CmdGeolocate

	case "show":
		if len(args) != 1 {
			return event, fmt.Errorf("usage: show ID")
		}
		event.Command = session.CmdMapShow
		event.Args = args

	case "back":
		event.Command = session.CmdDetailDone

	default:
		return event, fmt.Errorf("unknown command %q, try 'help'", command)
	}

	return event, nil
}

// buildFilterArgs turns key=value tokens into the positional filter:set
// argument list. Underscores in the region name stand for spaces.
func buildFilterArgs(tokens []string) ([]string, error) {
	values := map[string]string{}
	for _, token := range tokens {
		key, value, found := strings.Cut(token, "=")
		if !found {
			return nil, fmt.Errorf("bad filter token %q, expected key=value", token)
		}
		switch key {
		case "visited", "bookmarked", "region", "distance", "today":
			values[key] = value
		default:
			return nil, fmt.Errorf("unknown filter key %q", key)
		}
	}

	region := strings.ReplaceAll(values["region"], "_", " ")
	return []string{
		values["visited"],
		values["bookmarked"],
		region,
		values["distance"],
		values["today"],
	}, nil
}
