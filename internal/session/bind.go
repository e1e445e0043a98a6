package session

import (
	"fmt"
	"strconv"

	"github.com/pamana/markers/internal/dispatcher"
	"github.com/pamana/markers/internal/model"
)

// Command names understood by the dispatcher binding.
const (
	CmdStart      = "start"
	CmdFilterSet  = "filter:set"
	CmdSearch     = "search:input"
	CmdStatusSet  = "status:set"
	CmdGeolocate  = "geolocate"
	CmdDetailDone = "detail:done"
	CmdMapShow    = "map:show"
)

// Bind registers the session's operations on a dispatcher, which is how a
// frontend speaking the command protocol drives the session. Handlers
// post onto the loop and return immediately.
func (s *Session) Bind(d *dispatcher.Dispatcher) {
	d.Register(CmdStart, func(e dispatcher.Event) (any, error) {
		s.Start()
		return "queued", nil
	}, dispatcher.Logged())

	// filter:set <visited> <bookmarked> <region> <distanceKm> <onThisDay>
	// with "" for an unset value
	d.Register(CmdFilterSet, func(e dispatcher.Event) (any, error) {
		cfg, err := parseFilterArgs(e.Args)
		if err != nil {
			return nil, err
		}
		s.SetFilters(cfg)
		return "queued", nil
	}, dispatcher.Logged())

	d.Register(CmdSearch, func(e dispatcher.Event) (any, error) {
		if len(e.Args) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", CmdSearch, len(e.Args))
		}
		s.SetSearchQuery(e.Args[0])
		return "queued", nil
	})

	// status:set <id> <status> with the two-character status encoding
	d.Register(CmdStatusSet, func(e dispatcher.Event) (any, error) {
		if len(e.Args) != 2 {
			return nil, fmt.Errorf("%s expects 2 arguments, got %d", CmdStatusSet, len(e.Args))
		}
		status := model.DecodeStatus(e.Args[1])
		s.SetStatus(e.Args[0], &status.Visited, &status.Bookmarked)
		return "queued", nil
	}, dispatcher.Logged())

	d.Register(CmdGeolocate, func(e dispatcher.Event) (any, error) {
		s.Geolocate()
		return "queued", nil
	}, dispatcher.Logged())

	d.Register(CmdDetailDone, func(e dispatcher.Event) (any, error) {
		s.ReturnFromDetail()
		return "queued", nil
	})

	d.Register(CmdMapShow, func(e dispatcher.Event) (any, error) {
		if len(e.Args) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", CmdMapShow, len(e.Args))
		}
		s.ShowOnMap(e.Args[0])
		return "queued", nil
	})
}

func parseFilterArgs(args []string) (model.FilterConfig, error) {
	cfg := model.DefaultFilterConfig()
	if len(args) != 5 {
		return cfg, fmt.Errorf("%s expects 5 arguments, got %d", CmdFilterSet, len(args))
	}

	if args[0] != "" {
		t := model.TriState(args[0])
		if t != model.Any && t != model.Yes && t != model.No {
			return cfg, fmt.Errorf("bad visited value %q", args[0])
		}
		cfg.Visited = t
	}
	if args[1] != "" {
		t := model.TriState(args[1])
		if t != model.Any && t != model.Yes && t != model.No {
			return cfg, fmt.Errorf("bad bookmarked value %q", args[1])
		}
		cfg.Bookmarked = t
	}
	if args[2] != "" {
		region := args[2]
		cfg.Region = &region
	}
	if args[3] != "" {
		km, err := strconv.Atoi(args[3])
		if err != nil || !validDistance(km) {
			return cfg, fmt.Errorf("bad distance value %q", args[3])
		}
		cfg.DistanceKm = &km
	}
	if args[4] != "" {
		on, err := strconv.ParseBool(args[4])
		if err != nil {
			return cfg, fmt.Errorf("bad on-this-day value %q", args[4])
		}
		cfg.OnThisDay = on
	}
	return cfg, nil
}
