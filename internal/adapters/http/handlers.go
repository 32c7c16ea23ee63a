package http

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/neverbeen/internal/core/domain"
	"github.com/samirrijal/neverbeen/internal/core/usecases"
	"github.com/samirrijal/neverbeen/internal/pkg/geospatial"
)

// placeSearchWindow is how many candidates a search fetches before paging.
const placeSearchWindow = usecases.MaxPlaceLimit

// CreateSessionHandler starts a session at the default origin.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Explorer.NewSession(c.UserContext())
		if err != nil {
			return writeError(c, err)
		}
		c.Set(fiber.HeaderLocation, "/v1/sessions/"+sess.ID)
		return c.Status(fiber.StatusCreated).JSON(usecases.BuildView(sess))
	}
}

// GetSessionHandler returns the display view of a session.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Explorer.GetSession(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(usecases.BuildView(sess))
	}
}

// SetOriginHandler replaces the origin with manually typed coordinates.
func SetOriginHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req originRequest
		if err := bind(c, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		sess, err := deps.Explorer.SetOriginManual(c.UserContext(), c.Params("id"), req.Lat, req.Lon)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(usecases.BuildView(sess))
	}
}

// originResponse reports whether a geolocation reading was applied.
type originResponse struct {
	Session  usecases.SessionView `json:"session"`
	Fallback bool                 `json:"fallback"`
	Reason   string               `json:"reason,omitempty"`
}

// GeolocationOriginHandler applies a device geolocation reading. An unusable
// reading is not an error for the client: the previous origin is kept and
// the response is flagged as a fallback.
func GeolocationOriginHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req geolocationRequest
		if err := bind(c, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		reading := domain.GeolocationReading{
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
			Error:     req.Error,
		}

		sess, err := deps.Explorer.SetOriginFromGeolocation(c.UserContext(), c.Params("id"), reading)
		if errors.Is(err, domain.ErrLocationUnavailable) && sess != nil {
			return c.JSON(originResponse{
				Session:  usecases.BuildView(sess),
				Fallback: true,
				Reason:   err.Error(),
			})
		}
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(originResponse{Session: usecases.BuildView(sess)})
	}
}

// PlaceOriginHandler accepts a place search candidate as the origin.
func PlaceOriginHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req placeRequest
		if err := bind(c, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		place := domain.Place{DisplayName: strings.TrimSpace(req.DisplayName), Lat: req.Lat, Lon: req.Lon}
		sess, err := deps.Explorer.SetOriginFromPlace(c.UserContext(), c.Params("id"), place)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(usecases.BuildView(sess))
	}
}

// SetRadiusHandler sets the radius from a slider value.
func SetRadiusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req radiusRequest
		if err := bind(c, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		var unit domain.Unit
		if req.Unit != "" {
			u, err := domain.ParseUnit(req.Unit)
			if err != nil {
				return writeError(c, err)
			}
			unit = u
		}
		sess, err := deps.Explorer.SetRadius(c.UserContext(), c.Params("id"), req.Value, unit)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(usecases.BuildView(sess))
	}
}

// SetUnitHandler toggles the display unit.
func SetUnitHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req unitRequest
		if err := bind(c, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		unit, err := domain.ParseUnit(req.Unit)
		if err != nil {
			return writeError(c, err)
		}
		sess, err := deps.Explorer.SetUnit(c.UserContext(), c.Params("id"), unit)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(usecases.BuildView(sess))
	}
}

// SampleHandler draws a new destination ("Go" / "Try again").
func SampleHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req sampleRequest
		if err := bind(c, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		sess, err := deps.Explorer.Sample(c.UserContext(), c.Params("id"), req.Seed)
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(usecases.BuildView(sess))
	}
}

// SearchPlacesHandler resolves free text to place candidates.
func SearchPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := placeSearchQuery{
			Query:  strings.TrimSpace(c.Query("q")),
			Limit:  c.QueryInt("limit", 10),
			Offset: c.QueryInt("offset", 0),
		}
		if err := check(&q); err != nil {
			return errBadRequest(c, err.Error())
		}

		matches, err := deps.Places.Search(c.UserContext(), q.Query, placeSearchWindow)
		if err != nil {
			return writeError(c, err)
		}

		total := len(matches)
		page := []usecases.PlaceMatch{}
		if q.Offset < total {
			end := q.Offset + q.Limit
			if end > total {
				end = total
			}
			page = matches[q.Offset:end]
		}

		pg := Pagination{Offset: q.Offset, Limit: q.Limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// DistanceResponse is the great-circle distance between two points.
type DistanceResponse struct {
	From          domain.GeoPoint `json:"from"`
	To            domain.GeoPoint `json:"to"`
	DistanceKm    float64         `json:"distance_km"`
	DistanceMiles float64         `json:"distance_miles"`
	Unit          domain.Unit     `json:"unit"`
	Text          string          `json:"text"`
}

// DistanceHandler computes the haversine distance between two query points.
func DistanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := domain.ParseGeoPoint(c.Query("from_lat"), c.Query("from_lon"))
		if err != nil {
			return writeError(c, err)
		}
		to, err := domain.ParseGeoPoint(c.Query("to_lat"), c.Query("to_lon"))
		if err != nil {
			return writeError(c, err)
		}
		unit, err := domain.ParseUnit(c.Query("unit", "km"))
		if err != nil {
			return writeError(c, err)
		}

		km := geospatial.Distance(from, to)
		c.Set("Cache-Control", "public, max-age=86400")
		return c.JSON(DistanceResponse{
			From:          from,
			To:            to,
			DistanceKm:    km,
			DistanceMiles: geospatial.KmToMiles(km),
			Unit:          unit,
			Text:          geospatial.FormatDistance(km, unit),
		})
	}
}

// DMSResponse pairs a decimal angle with its DMS form.
type DMSResponse struct {
	Decimal float64     `json:"decimal"`
	Axis    domain.Axis `json:"axis"`
	DMS     domain.DMS  `json:"dms"`
	Text    string      `json:"text"`
}

// DMSHandler converts a decimal latitude or longitude to DMS.
func DMSHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		axis, err := domain.ParseAxis(c.Query("axis", "lat"))
		if err != nil {
			return writeError(c, err)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(c.Query("value")), 64)
		if err != nil {
			return newError(c, fiber.StatusBadRequest, "invalid_coordinate", "value must be a number")
		}
		p := domain.GeoPoint{Lat: value}
		if axis == domain.AxisLongitude {
			p = domain.GeoPoint{Lon: value}
		}
		if err := p.Validate(); err != nil {
			return writeError(c, err)
		}

		d := geospatial.ToDMS(value, axis)
		c.Set("Cache-Control", "public, max-age=86400")
		return c.JSON(DMSResponse{Decimal: value, Axis: axis, DMS: d, Text: geospatial.FormatDMS(d)})
	}
}

// DMSToDecimalHandler converts DMS components back to decimal degrees.
func DMSToDecimalHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dmsRequest
		if err := bind(c, &req); err != nil {
			return errBadRequest(c, err.Error())
		}
		d := domain.DMS{
			Degrees:    req.Degrees,
			Minutes:    req.Minutes,
			Seconds:    req.Seconds,
			Hemisphere: domain.Hemisphere(strings.ToUpper(req.Hemisphere)),
		}
		if err := d.Validate(); err != nil {
			return writeError(c, err)
		}
		axis, _ := d.Hemisphere.Axis()
		return c.JSON(DMSResponse{
			Decimal: geospatial.ToDecimal(d),
			Axis:    axis,
			DMS:     d,
			Text:    geospatial.FormatDMS(d),
		})
	}
}
