package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jamespfennell/gtfs"
	"github.com/twpayne/go-polyline"

	"transitview.onebusaway.org/internal/logging"
	"transitview.onebusaway.org/internal/models"
	"transitview.onebusaway.org/internal/utils"
)

// StaticProviderConfig configures the GTFS-backed reference provider.
type StaticProviderConfig struct {
	// Source is a URL or local file path for a static GTFS zip.
	Source string
	// VehiclePositionsURL is an optional GTFS-RT vehicle positions feed.
	// When empty, FetchVehiclesForRoute returns no vehicles.
	VehiclePositionsURL string
	// AgencyID qualifies ids in the combined `{agency}_{code}` form. Defaults
	// to the feed's first agency.
	AgencyID string
}

// StaticProvider is a Provider backed by a parsed static GTFS feed, with
// optional GTFS-RT vehicle positions. It exists so the engine can run
// against a plain feed zip without a live OneBusAway server.
type StaticProvider struct {
	cfg    StaticProviderConfig
	logger *slog.Logger

	mu          sync.RWMutex
	data        *gtfs.Static
	stopRoutes  map[string][]string
	lastUpdated time.Time
}

// NewStaticProvider loads and parses the configured GTFS feed. Feed
// downloads are retried with exponential backoff; everything after load is
// served from memory.
func NewStaticProvider(cfg StaticProviderConfig, logger *slog.Logger) (*StaticProvider, error) {
	isLocalFile := !strings.HasPrefix(cfg.Source, "http://") && !strings.HasPrefix(cfg.Source, "https://")

	raw, err := rawFeedData(cfg.Source, isLocalFile, logger)
	if err != nil {
		return nil, fmt.Errorf("error reading GTFS data: %w", err)
	}

	staticData, err := gtfs.ParseStatic(raw, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("error parsing GTFS data: %w", err)
	}

	p := &StaticProvider{
		cfg:         cfg,
		logger:      logger,
		data:        staticData,
		lastUpdated: time.Now(),
	}
	p.stopRoutes = buildStopRouteIndex(staticData)

	logging.LogOperation(logger, "gtfs_feed_loaded",
		slog.String("source", cfg.Source),
		slog.Int("stops", len(staticData.Stops)),
		slog.Int("routes", len(staticData.Routes)),
		slog.Int("trips", len(staticData.Trips)))

	return p, nil
}

func rawFeedData(source string, isLocalFile bool, logger *slog.Logger) ([]byte, error) {
	if isLocalFile {
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("error reading local GTFS file: %w", err)
		}
		return b, nil
	}

	var b []byte
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 2 * time.Minute

	err := backoff.Retry(func() error {
		resp, err := http.Get(source)
		if err != nil {
			return err
		}
		defer logging.SafeCloseWithLogging(resp.Body, logger, "gtfs_feed_download")

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d downloading GTFS feed", resp.StatusCode)
		}

		b, err = io.ReadAll(resp.Body)
		return err
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return b, nil
}

func buildStopRouteIndex(data *gtfs.Static) map[string][]string {
	seen := make(map[string]map[string]bool)
	for i := range data.Trips {
		trip := &data.Trips[i]
		if trip.Route == nil {
			continue
		}
		for _, st := range trip.StopTimes {
			if st.Stop == nil {
				continue
			}
			if seen[st.Stop.Id] == nil {
				seen[st.Stop.Id] = make(map[string]bool)
			}
			seen[st.Stop.Id][trip.Route.Id] = true
		}
	}

	index := make(map[string][]string, len(seen))
	for stopID, routes := range seen {
		ids := make([]string, 0, len(routes))
		for routeID := range routes {
			ids = append(ids, routeID)
		}
		sort.Strings(ids)
		index[stopID] = ids
	}
	return index
}

func (p *StaticProvider) agencyID() string {
	if p.cfg.AgencyID != "" {
		return p.cfg.AgencyID
	}
	if len(p.data.Agencies) > 0 {
		return p.data.Agencies[0].Id
	}
	return "1"
}

func (p *StaticProvider) combined(codeID string) string {
	return utils.FormCombinedID(p.agencyID(), codeID)
}

func (p *StaticProvider) findRoute(bareID string) *gtfs.Route {
	for i := range p.data.Routes {
		if p.data.Routes[i].Id == bareID {
			return &p.data.Routes[i]
		}
	}
	return nil
}

func (p *StaticProvider) findStop(bareID string) *gtfs.Stop {
	for i := range p.data.Stops {
		if p.data.Stops[i].Id == bareID {
			return &p.data.Stops[i]
		}
	}
	return nil
}

func (p *StaticProvider) routeInfo(route *gtfs.Route) models.RouteInfo {
	agencyID := p.agencyID()
	if route.Agency != nil {
		agencyID = route.Agency.Id
	}
	return models.NewRouteInfo(
		utils.FormCombinedID(agencyID, route.Id),
		agencyID,
		route.ShortName,
		route.LongName,
		route.Description,
		models.RouteType(route.Type),
		route.Color,
		route.TextColor,
	)
}

func (p *StaticProvider) stopRecord(stop *gtfs.Stop, direction string) models.StopRecord {
	var lat, lon float64
	if stop.Latitude != nil {
		lat = *stop.Latitude
	}
	if stop.Longitude != nil {
		lon = *stop.Longitude
	}

	routeIDs := make([]string, 0, len(p.stopRoutes[stop.Id]))
	for _, id := range p.stopRoutes[stop.Id] {
		routeIDs = append(routeIDs, p.combined(id))
	}

	return models.NewStopRecord(
		p.combined(stop.Id),
		stop.Name,
		stop.Code,
		lat,
		lon,
		direction,
		routeIDs,
		utils.MapWheelchairBoarding(stop.WheelchairBoarding),
	)
}

// FetchRouteDetails builds the branch/segment/stop structure for one route
// by grouping the route's trips by headsign and taking the longest trip of
// each group as that branch's stop sequence.
func (p *StaticProvider) FetchRouteDetails(ctx context.Context, routeID string) (RouteDetails, error) {
	if err := ctx.Err(); err != nil {
		return RouteDetails{}, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	route := p.findRoute(utils.BareCodeID(routeID))
	if route == nil {
		return RouteDetails{}, fmt.Errorf("route %s: %w", routeID, ErrRouteNotFound)
	}

	type branchGroup struct {
		headsign string
		trips    []*gtfs.ScheduledTrip
	}
	var groups []*branchGroup
	byHeadsign := make(map[string]*branchGroup)

	for i := range p.data.Trips {
		trip := &p.data.Trips[i]
		if trip.Route == nil || trip.Route.Id != route.Id {
			continue
		}
		group, ok := byHeadsign[trip.Headsign]
		if !ok {
			group = &branchGroup{headsign: trip.Headsign}
			byHeadsign[trip.Headsign] = group
			groups = append(groups, group)
		}
		group.trips = append(group.trips, trip)
	}

	if len(groups) == 0 {
		return RouteDetails{}, fmt.Errorf("route %s has no trips: %w", routeID, ErrRouteNotFound)
	}

	branches := make([]models.Branch, 0, len(groups))
	for _, group := range groups {
		representative := group.trips[0]
		for _, trip := range group.trips {
			if len(trip.StopTimes) > len(representative.StopTimes) {
				representative = trip
			}
		}
		branches = append(branches, p.buildBranch(group.headsign, group.trips, representative))
	}

	return RouteDetails{Info: p.routeInfo(route), Branches: branches}, nil
}

func (p *StaticProvider) buildBranch(headsign string, trips []*gtfs.ScheduledTrip, representative *gtfs.ScheduledTrip) models.Branch {
	stops := make([]models.StopRecord, 0, len(representative.StopTimes))
	for i, st := range representative.StopTimes {
		if st.Stop == nil {
			continue
		}
		direction := ""
		if i+1 < len(representative.StopTimes) {
			next := representative.StopTimes[i+1].Stop
			if next != nil && st.Stop.Latitude != nil && st.Stop.Longitude != nil && next.Latitude != nil && next.Longitude != nil {
				direction = utils.CompassDirection(*st.Stop.Latitude, *st.Stop.Longitude, *next.Latitude, *next.Longitude)
			}
		}
		stops = append(stops, p.stopRecord(st.Stop, direction))
	}

	// One drawable segment per distinct shape among the branch's trips.
	var segments []models.Polyline
	seenShapes := make(map[string]bool)
	for _, trip := range trips {
		if trip.Shape == nil || len(trip.Shape.Points) == 0 || seenShapes[trip.Shape.ID] {
			continue
		}
		seenShapes[trip.Shape.ID] = true
		coords := make([][]float64, 0, len(trip.Shape.Points))
		for _, pt := range trip.Shape.Points {
			coords = append(coords, []float64{pt.Latitude, pt.Longitude})
		}
		segments = append(segments, models.Polyline{
			Length: len(coords),
			Points: string(polyline.EncodeCoords(coords)),
		})
	}

	return models.Branch{
		Name:     headsign,
		Headsign: headsign,
		Segments: segments,
		Stops:    stops,
	}
}

// FetchVehiclesForRoute downloads the configured GTFS-RT vehicle positions
// feed and maps the vehicles serving the given route. Without a configured
// feed it reports no vehicles rather than an error.
func (p *StaticProvider) FetchVehiclesForRoute(ctx context.Context, routeID string) ([]models.VehicleLocation, error) {
	if p.cfg.VehiclePositionsURL == "" {
		return []models.VehicleLocation{}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.VehiclePositionsURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, p.logger, "vehicle_positions_download")

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	realtime, err := gtfs.ParseRealtime(b, &gtfs.ParseRealtimeOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	bareID := utils.BareCodeID(routeID)
	vehicles := make([]models.VehicleLocation, 0)
	for i := range realtime.Vehicles {
		v := &realtime.Vehicles[i]
		if v.Trip == nil || v.Trip.ID.RouteID != bareID {
			continue
		}
		if loc, ok := p.vehicleLocation(v, routeID); ok {
			vehicles = append(vehicles, loc)
		}
	}
	return vehicles, nil
}

func (p *StaticProvider) vehicleLocation(v *gtfs.Vehicle, routeID string) (models.VehicleLocation, bool) {
	if v.ID == nil || v.Position == nil || v.Position.Latitude == nil || v.Position.Longitude == nil {
		return models.VehicleLocation{}, false
	}

	loc := models.VehicleLocation{
		VehicleID: p.combined(v.ID.ID),
		RouteID:   routeID,
		Lat:       float64(*v.Position.Latitude),
		Lon:       float64(*v.Position.Longitude),
		Predicted: true,
	}
	if v.Position.Bearing != nil {
		heading := float64(*v.Position.Bearing)
		loc.Heading = &heading
	}
	if v.Trip != nil {
		loc.TripID = p.combined(v.Trip.ID.ID)
	}
	if v.Timestamp != nil {
		loc.LastUpdateTime = v.Timestamp.UnixMilli()
	}
	return loc, true
}

// serviceDay returns midnight of the current date in the feed's agency
// timezone. Schedules are resolved against agency-local midnight so the
// epoch timestamps line up with the feed's clock rather than the host's.
func (p *StaticProvider) serviceDay(now time.Time) time.Time {
	loc := now.Location()
	if len(p.data.Agencies) > 0 && p.data.Agencies[0].Timezone != "" {
		if tz, err := time.LoadLocation(p.data.Agencies[0].Timezone); err == nil {
			loc = tz
		}
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// serviceActiveOn reports whether the service calendar runs on the given
// date, honoring calendar_dates additions and removals. Trips with no
// service record are treated as always active.
func serviceActiveOn(service *gtfs.Service, date time.Time) bool {
	if service == nil {
		return true
	}
	key := date.Format("20060102")
	for _, removed := range service.RemovedDates {
		if removed.Format("20060102") == key {
			return false
		}
	}
	for _, added := range service.AddedDates {
		if added.Format("20060102") == key {
			return true
		}
	}
	if !service.StartDate.IsZero() && key < service.StartDate.Format("20060102") {
		return false
	}
	if !service.EndDate.IsZero() && key > service.EndDate.Format("20060102") {
		return false
	}
	switch date.Weekday() {
	case time.Sunday:
		return service.Sunday
	case time.Monday:
		return service.Monday
	case time.Tuesday:
		return service.Tuesday
	case time.Wednesday:
		return service.Wednesday
	case time.Thursday:
		return service.Thursday
	case time.Friday:
		return service.Friday
	case time.Saturday:
		return service.Saturday
	}
	return false
}

// FetchStopSchedule resolves every trip visiting the stop onto today's
// service date and groups the result per route, per headsign.
func (p *StaticProvider) FetchStopSchedule(ctx context.Context, stopID string) (StopSchedule, error) {
	if err := ctx.Err(); err != nil {
		return StopSchedule{}, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	stop := p.findStop(utils.BareCodeID(stopID))
	if stop == nil {
		return StopSchedule{}, fmt.Errorf("stop %s: %w", stopID, ErrStopNotFound)
	}

	startOfDay := p.serviceDay(time.Now())

	type directionKey struct {
		routeID  string
		headsign string
	}
	routeOrder := []string{}
	directionOrder := make(map[string][]string)
	stopTimes := make(map[directionKey][]TripStopTime)
	routeRefs := make(map[string]models.RouteInfo)
	agencyPresent := make(map[string]bool)

	for i := range p.data.Trips {
		trip := &p.data.Trips[i]
		if trip.Route == nil || !serviceActiveOn(trip.Service, startOfDay) {
			continue
		}
		for _, st := range trip.StopTimes {
			if st.Stop == nil || st.Stop.Id != stop.Id {
				continue
			}
			combinedRouteID := p.combined(trip.Route.Id)
			key := directionKey{routeID: combinedRouteID, headsign: trip.Headsign}

			if _, ok := routeRefs[combinedRouteID]; !ok {
				routeRefs[combinedRouteID] = p.routeInfo(trip.Route)
				routeOrder = append(routeOrder, combinedRouteID)
				if trip.Route.Agency != nil {
					agencyPresent[trip.Route.Agency.Id] = true
				}
			}
			if len(stopTimes[key]) == 0 {
				directionOrder[combinedRouteID] = append(directionOrder[combinedRouteID], trip.Headsign)
			}

			serviceID := ""
			if trip.Service != nil {
				serviceID = trip.Service.Id
			}
			stopTimes[key] = append(stopTimes[key], TripStopTime{
				TripID:        p.combined(trip.ID),
				ServiceID:     serviceID,
				ArrivalTime:   startOfDay.Add(st.ArrivalTime).UnixMilli(),
				DepartureTime: startOfDay.Add(st.DepartureTime).UnixMilli(),
			})
			break
		}
	}

	entry := StopScheduleEntry{
		StopID: p.combined(stop.Id),
		Date:   startOfDay.UnixMilli(),
	}
	for _, routeID := range routeOrder {
		routeSchedule := RouteSchedule{RouteID: routeID}
		for _, headsign := range directionOrder[routeID] {
			times := stopTimes[directionKey{routeID: routeID, headsign: headsign}]
			sort.Slice(times, func(i, j int) bool { return times[i].ArrivalTime < times[j].ArrivalTime })
			routeSchedule.DirectionSchedules = append(routeSchedule.DirectionSchedules, DirectionSchedule{
				TripHeadsign: headsign,
				StopTimes:    times,
			})
		}
		entry.RouteSchedules = append(entry.RouteSchedules, routeSchedule)
	}

	references := models.NewEmptyReferences()
	for _, agency := range p.data.Agencies {
		if !agencyPresent[agency.Id] {
			continue
		}
		references.Agencies = append(references.Agencies, models.NewAgencyReference(
			agency.Id, agency.Name, agency.Url, agency.Timezone, agency.Language, agency.Phone, agency.Email,
		))
	}
	for _, routeID := range routeOrder {
		references.Routes = append(references.Routes, routeRefs[routeID])
	}

	return StopSchedule{Entry: entry, References: references}, nil
}

// FetchRouteSchedule returns one ScheduleEntry per trip of the route,
// resolved onto today's service date.
func (p *StaticProvider) FetchRouteSchedule(ctx context.Context, routeID string) ([]models.ScheduleEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	route := p.findRoute(utils.BareCodeID(routeID))
	if route == nil {
		return nil, fmt.Errorf("route %s: %w", routeID, ErrRouteNotFound)
	}

	startOfDay := p.serviceDay(time.Now())
	combinedRouteID := p.combined(route.Id)

	var entries []models.ScheduleEntry
	for i := range p.data.Trips {
		trip := &p.data.Trips[i]
		if trip.Route == nil || trip.Route.Id != route.Id || !serviceActiveOn(trip.Service, startOfDay) {
			continue
		}

		stopTimes := make([]models.StopTimeInstance, 0, len(trip.StopTimes))
		for _, st := range trip.StopTimes {
			if st.Stop == nil {
				continue
			}
			stopTimes = append(stopTimes, models.StopTimeInstance{
				StopID:        p.combined(st.Stop.Id),
				ArrivalTime:   startOfDay.Add(st.ArrivalTime).UnixMilli(),
				DepartureTime: startOfDay.Add(st.DepartureTime).UnixMilli(),
			})
		}

		serviceID := ""
		if trip.Service != nil {
			serviceID = trip.Service.Id
		}
		entries = append(entries, models.NewScheduleEntry(
			p.combined(trip.ID), combinedRouteID, serviceID, trip.Headsign, stopTimes,
		))
	}
	return entries, nil
}

// FindNearbyTransit returns the stops within radiusMeters of the coordinate,
// closest first, together with the routes serving them.
func (p *StaticProvider) FindNearbyTransit(ctx context.Context, lat, lon, radiusMeters float64) (NearbyTransit, error) {
	if err := ctx.Err(); err != nil {
		return NearbyTransit{}, err
	}
	if err := utils.ValidateLatitude(lat); err != nil {
		return NearbyTransit{}, err
	}
	if err := utils.ValidateLongitude(lon); err != nil {
		return NearbyTransit{}, err
	}
	if err := utils.ValidateRadius(radiusMeters); err != nil {
		return NearbyTransit{}, err
	}
	if radiusMeters == 0 {
		radiusMeters = 1000
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	type stopWithDistance struct {
		stop     *gtfs.Stop
		distance float64
	}
	var candidates []stopWithDistance
	for i := range p.data.Stops {
		stop := &p.data.Stops[i]
		if stop.Latitude == nil || stop.Longitude == nil {
			continue
		}
		distance := utils.Haversine(lat, lon, *stop.Latitude, *stop.Longitude)
		if distance <= radiusMeters {
			candidates = append(candidates, stopWithDistance{stop, distance})
		}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].distance < candidates[j].distance })

	result := NearbyTransit{SearchLocation: models.Location{Lat: lat, Lon: lon}}
	routesSeen := make(map[string]bool)
	for _, candidate := range candidates {
		result.Stops = append(result.Stops, p.stopRecord(candidate.stop, ""))
		for _, bareRouteID := range p.stopRoutes[candidate.stop.Id] {
			if routesSeen[bareRouteID] {
				continue
			}
			routesSeen[bareRouteID] = true
			if route := p.findRoute(bareRouteID); route != nil {
				result.Routes = append(result.Routes, p.routeInfo(route))
			}
		}
	}
	return result, nil
}
