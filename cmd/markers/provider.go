package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/pamana/markers/internal/model"
)

// envProvider supplies the position from the MARKERS_LAT and MARKERS_LON
// environment variables, which is all the positioning a terminal session
// has. Unset variables read as positioning switched off.
type envProvider struct{}

func newEnvProvider() *envProvider {
	return &envProvider{}
}

func (p *envProvider) Available() bool {
	_, _, ok := readPosition()
	return ok
}

func (p *envProvider) CurrentPosition(ctx context.Context, _ time.Duration) (model.Position, error) {
	lat, lon, ok := readPosition()
	if !ok {
		return model.Position{}, context.Canceled
	}
	return model.Position{Lat: lat, Lon: lon}, nil
}

func readPosition() (lat, lon float64, ok bool) {
	latStr, lonStr := os.Getenv("MARKERS_LAT"), os.Getenv("MARKERS_LON")
	if latStr == "" || lonStr == "" {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
